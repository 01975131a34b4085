package order

import (
	"fmt"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/errs"
)

// Verdict is the inspector's first-pass QC decision.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

func ParseVerdict(raw string) (Verdict, error) {
	switch v := Verdict(raw); v {
	case VerdictPass, VerdictFail:
		return v, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("verdict", fmt.Errorf("%q is not PASS or FAIL", raw))
	}
}

// Trigger maps the verdict onto the QC outcome trigger.
func (v Verdict) Trigger() Trigger {
	if v == VerdictPass {
		return QCPassed
	}
	return QCFailed
}

// ReinspectionVerdict is the second inspector's decision on a disputed failure.
type ReinspectionVerdict string

const (
	ReinspectionConfirmFail ReinspectionVerdict = "CONFIRM_FAIL"
	ReinspectionPass        ReinspectionVerdict = "PASS"
)

func ParseReinspectionVerdict(raw string) (ReinspectionVerdict, error) {
	switch v := ReinspectionVerdict(raw); v {
	case ReinspectionConfirmFail, ReinspectionPass:
		return v, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("reinspection verdict", fmt.Errorf("%q is not CONFIRM_FAIL or PASS", raw))
	}
}

func (v ReinspectionVerdict) Trigger() Trigger {
	if v == ReinspectionPass {
		return ReinspectionPassed
	}
	return ReinspectionConfirmedFail
}

// QCResult records the first-pass inspection. Costs are in minor currency units.
type QCResult struct {
	Verdict     Verdict
	Category    string
	InspectorID kernel.ActorID
	FabricCost  int64
	LaborFee    int64
	RecordedAt  time.Time
}

func (r QCResult) TotalDue() int64 {
	return r.FabricCost + r.LaborFee
}

type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutHeld     PayoutStatus = "HELD"
	PayoutWithheld PayoutStatus = "WITHHELD"
)

// Payout is the tailor ledger entry created by the QC outcome.
type Payout struct {
	TotalDue int64
	Status   PayoutStatus
}

// Payouts are released during Indian business hours; verdicts outside that
// window are held until the next one.
var (
	payoutZone      = time.FixedZone("IST", 5*60*60+30*60)
	payoutOpenHour  = 9
	payoutCloseHour = 18
)

func newPayout(qc QCResult, at time.Time) Payout {
	status := PayoutPending
	if h := at.In(payoutZone).Hour(); h < payoutOpenHour || h >= payoutCloseHour {
		status = PayoutHeld
	}
	return Payout{TotalDue: qc.TotalDue(), Status: status}
}

func withheldPayout(qc *QCResult) Payout {
	var due int64
	if qc != nil {
		due = qc.TotalDue()
	}
	return Payout{TotalDue: due, Status: PayoutWithheld}
}

// Shipment is the outbound parcel from HQ to the customer.
type Shipment struct {
	Carrier        string
	TrackingNumber string
}

// Dispute tracks a QC failure from the moment it is recorded until the order
// leaves the failure sub-flow. Zero times mean "not yet".
type Dispute struct {
	OpenedAt      time.Time
	Deadline      time.Time
	FiledAt       time.Time
	TailorID      kernel.ActorID
	Reason        string
	Verdict       ReinspectionVerdict
	InspectorID   kernel.ActorID
	ReinspectedAt time.Time
	Expired       bool
}

func (d Dispute) HasDeadline() bool {
	return !d.Deadline.IsZero()
}

func (d Dispute) IsReinspected() bool {
	return d.Verdict != ""
}
