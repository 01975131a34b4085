package order

import (
	"errors"
	"fmt"
	"strings"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/errs"
	"patternfactory/internal/pkg/guard"
)

// PayloadKind tags each payload variant on the wire.
type PayloadKind string

const (
	KindNone         PayloadKind = "none"
	KindPayment      PayloadKind = "payment"
	KindScan         PayloadKind = "scan"
	KindProcessing   PayloadKind = "processing"
	KindClaim        PayloadKind = "claim"
	KindCourier      PayloadKind = "courier"
	KindInspection   PayloadKind = "inspection"
	KindQCVerdict    PayloadKind = "qc_verdict"
	KindDispute      PayloadKind = "dispute"
	KindReinspection PayloadKind = "reinspection"
	KindShipment     PayloadKind = "shipment"
	KindReassignment PayloadKind = "reassignment"
)

var (
	ErrPaymentIsNotConstructed      = errors.New("PaymentConfirmation must be created via NewPaymentConfirmation")
	ErrScanIsNotConstructed         = errors.New("ScanResult must be created via NewScanResult")
	ErrClaimIsNotConstructed        = errors.New("ClaimRequest must be created via NewClaimRequest")
	ErrCourierIsNotConstructed      = errors.New("CourierBooking must be created via NewCourierBooking")
	ErrInspectionIsNotConstructed   = errors.New("InspectionStart must be created via NewInspectionStart")
	ErrQCVerdictIsNotConstructed    = errors.New("QCVerdict must be created via NewQCVerdict")
	ErrDisputeIsNotConstructed      = errors.New("DisputeSubmission must be created via NewDisputeSubmission")
	ErrReinspectionIsNotConstructed = errors.New("ReinspectionResult must be created via NewReinspectionResult")
	ErrShipmentIsNotConstructed     = errors.New("ShipmentDetails must be created via NewShipmentDetails")
	ErrReassignmentIsNotConstructed = errors.New("Reassignment must be created via NewReassignment")
)

// Payload carries the trigger-specific data of a transition. The set of
// variants is closed: only types in this package implement it.
type Payload interface {
	Kind() PayloadKind
	Validate() error
	isPayload()
}

// payloadKindFor lists the payload each trigger needs. Triggers not listed
// take no payload.
var payloadKindFor = map[Trigger]PayloadKind{
	PaymentReceived:           KindPayment,
	ScanReceivedTrigger:       KindScan,
	ProcessingStarted:         KindProcessing,
	ClaimedByTailor:           KindClaim,
	CourierBooked:             KindCourier,
	QCStarted:                 KindInspection,
	QCPassed:                  KindQCVerdict,
	QCFailed:                  KindQCVerdict,
	DisputeFiled:              KindDispute,
	ReinspectionConfirmedFail: KindReinspection,
	ReinspectionPassed:        KindReinspection,
	ShippedTrigger:            KindShipment,
	TailorReassigned:          KindReassignment,
	InspectorReassigned:       KindReassignment,
}

// PayloadKindFor returns the payload variant the trigger expects.
func PayloadKindFor(t Trigger) PayloadKind {
	if k, ok := payloadKindFor[t]; ok {
		return k
	}
	return KindNone
}

// checkPayload normalizes a nil payload and verifies the variant matches the
// trigger.
func checkPayload(t Trigger, p Payload) (Payload, error) {
	want := PayloadKindFor(t)
	if p == nil {
		p = NoPayload{}
	}
	if want == KindProcessing && p.Kind() == KindNone {
		return ProcessingStart{}, nil
	}
	if p.Kind() != want {
		return nil, &InvalidPayloadError{Trigger: t, Cause: fmt.Errorf("expected %s payload, got %s", want, p.Kind())}
	}
	if err := p.Validate(); err != nil {
		return nil, &InvalidPayloadError{Trigger: t, Cause: err}
	}
	return p, nil
}

// NoPayload is used by triggers that carry no data.
type NoPayload struct{}

func (NoPayload) Kind() PayloadKind { return KindNone }
func (NoPayload) Validate() error   { return nil }
func (NoPayload) isPayload()        {}

// DefaultCurrency applies when a payment confirmation names no currency.
const DefaultCurrency = "INR"

// PaymentConfirmation confirms the customer paid. Amount is in minor units.
type PaymentConfirmation struct {
	method    string
	amount    int64
	currency  string
	reference string
	guard     guard.ConstructorGuard
}

func NewPaymentConfirmation(method string, amount int64, currency, reference string) (PaymentConfirmation, error) {
	if strings.TrimSpace(method) == "" {
		return PaymentConfirmation{}, errs.NewValueIsRequiredError("payment method")
	}
	if amount <= 0 {
		return PaymentConfirmation{}, errs.NewValueIsInvalidErrorWithCause("payment amount", fmt.Errorf("%d is not greater than 0", amount))
	}
	if currency = strings.TrimSpace(currency); currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return PaymentConfirmation{}, errs.NewValueIsInvalidErrorWithCause("payment currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	return PaymentConfirmation{
		method:    method,
		amount:    amount,
		currency:  strings.ToUpper(currency),
		reference: reference,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (p PaymentConfirmation) Kind() PayloadKind { return KindPayment }
func (p PaymentConfirmation) Validate() error   { return p.guard.Validate(ErrPaymentIsNotConstructed) }
func (PaymentConfirmation) isPayload()          {}
func (p PaymentConfirmation) Method() string    { return p.method }
func (p PaymentConfirmation) Amount() int64     { return p.amount }
func (p PaymentConfirmation) Currency() string  { return p.currency }
func (p PaymentConfirmation) Reference() string { return p.reference }

// ScanResult delivers the body scan measurements.
type ScanResult struct {
	measurements Measurements
	guard        guard.ConstructorGuard
}

func NewScanResult(measurements Measurements) (ScanResult, error) {
	if measurements.IsEmpty() {
		return ScanResult{}, errs.NewValueIsRequiredError("measurements")
	}
	return ScanResult{measurements: measurements, guard: guard.NewConstructorGuard()}, nil
}

func (p ScanResult) Kind() PayloadKind          { return KindScan }
func (p ScanResult) Validate() error            { return p.guard.Validate(ErrScanIsNotConstructed) }
func (ScanResult) isPayload()                   {}
func (p ScanResult) Measurements() Measurements { return p.measurements }

// ProcessingStart may acknowledge measurement flags so a flagged scan can
// proceed to pattern generation.
type ProcessingStart struct {
	acknowledgeFlags bool
}

func NewProcessingStart(acknowledgeFlags bool) ProcessingStart {
	return ProcessingStart{acknowledgeFlags: acknowledgeFlags}
}

func (p ProcessingStart) Kind() PayloadKind       { return KindProcessing }
func (p ProcessingStart) Validate() error         { return nil }
func (ProcessingStart) isPayload()                {}
func (p ProcessingStart) AcknowledgesFlags() bool { return p.acknowledgeFlags }

type ClaimRequest struct {
	tailorID kernel.ActorID
	guard    guard.ConstructorGuard
}

func NewClaimRequest(tailorID kernel.ActorID) (ClaimRequest, error) {
	if err := tailorID.Validate(); err != nil {
		return ClaimRequest{}, err
	}
	return ClaimRequest{tailorID: tailorID, guard: guard.NewConstructorGuard()}, nil
}

func (p ClaimRequest) Kind() PayloadKind        { return KindClaim }
func (p ClaimRequest) Validate() error          { return p.guard.Validate(ErrClaimIsNotConstructed) }
func (ClaimRequest) isPayload()                 {}
func (p ClaimRequest) TailorID() kernel.ActorID { return p.tailorID }

type CourierBooking struct {
	courierID kernel.ActorID
	guard     guard.ConstructorGuard
}

func NewCourierBooking(courierID kernel.ActorID) (CourierBooking, error) {
	if err := courierID.Validate(); err != nil {
		return CourierBooking{}, err
	}
	return CourierBooking{courierID: courierID, guard: guard.NewConstructorGuard()}, nil
}

func (p CourierBooking) Kind() PayloadKind         { return KindCourier }
func (p CourierBooking) Validate() error           { return p.guard.Validate(ErrCourierIsNotConstructed) }
func (CourierBooking) isPayload()                  {}
func (p CourierBooking) CourierID() kernel.ActorID { return p.courierID }

type InspectionStart struct {
	inspectorID kernel.ActorID
	guard       guard.ConstructorGuard
}

func NewInspectionStart(inspectorID kernel.ActorID) (InspectionStart, error) {
	if err := inspectorID.Validate(); err != nil {
		return InspectionStart{}, err
	}
	return InspectionStart{inspectorID: inspectorID, guard: guard.NewConstructorGuard()}, nil
}

func (p InspectionStart) Kind() PayloadKind           { return KindInspection }
func (p InspectionStart) Validate() error             { return p.guard.Validate(ErrInspectionIsNotConstructed) }
func (InspectionStart) isPayload()                    {}
func (p InspectionStart) InspectorID() kernel.ActorID { return p.inspectorID }

// QCVerdict is the inspector's decision together with the ledger amounts.
type QCVerdict struct {
	verdict     Verdict
	category    string
	inspectorID kernel.ActorID
	fabricCost  int64
	laborFee    int64
	guard       guard.ConstructorGuard
}

func NewQCVerdict(verdict Verdict, category string, inspectorID kernel.ActorID, fabricCost, laborFee int64) (QCVerdict, error) {
	if _, err := ParseVerdict(string(verdict)); err != nil {
		return QCVerdict{}, err
	}
	if verdict == VerdictFail && strings.TrimSpace(category) == "" {
		return QCVerdict{}, errs.NewValueIsRequiredError("verdict category")
	}
	if err := inspectorID.Validate(); err != nil {
		return QCVerdict{}, err
	}
	if fabricCost < 0 || laborFee < 0 {
		return QCVerdict{}, errs.NewValueIsInvalidErrorWithCause("qc ledger",
			fmt.Errorf("fabric cost %d and labor fee %d must not be negative", fabricCost, laborFee))
	}
	return QCVerdict{
		verdict:     verdict,
		category:    category,
		inspectorID: inspectorID,
		fabricCost:  fabricCost,
		laborFee:    laborFee,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (p QCVerdict) Kind() PayloadKind           { return KindQCVerdict }
func (p QCVerdict) Validate() error             { return p.guard.Validate(ErrQCVerdictIsNotConstructed) }
func (QCVerdict) isPayload()                    {}
func (p QCVerdict) Verdict() Verdict            { return p.verdict }
func (p QCVerdict) Category() string            { return p.category }
func (p QCVerdict) InspectorID() kernel.ActorID { return p.inspectorID }
func (p QCVerdict) FabricCost() int64           { return p.fabricCost }
func (p QCVerdict) LaborFee() int64             { return p.laborFee }

type DisputeSubmission struct {
	tailorID kernel.ActorID
	reason   string
	guard    guard.ConstructorGuard
}

func NewDisputeSubmission(tailorID kernel.ActorID, reason string) (DisputeSubmission, error) {
	if err := tailorID.Validate(); err != nil {
		return DisputeSubmission{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return DisputeSubmission{}, errs.NewValueIsRequiredError("dispute reason")
	}
	return DisputeSubmission{tailorID: tailorID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (p DisputeSubmission) Kind() PayloadKind        { return KindDispute }
func (p DisputeSubmission) Validate() error          { return p.guard.Validate(ErrDisputeIsNotConstructed) }
func (DisputeSubmission) isPayload()                 {}
func (p DisputeSubmission) TailorID() kernel.ActorID { return p.tailorID }
func (p DisputeSubmission) Reason() string           { return p.reason }

type ReinspectionResult struct {
	verdict     ReinspectionVerdict
	inspectorID kernel.ActorID
	guard       guard.ConstructorGuard
}

func NewReinspectionResult(verdict ReinspectionVerdict, inspectorID kernel.ActorID) (ReinspectionResult, error) {
	if _, err := ParseReinspectionVerdict(string(verdict)); err != nil {
		return ReinspectionResult{}, err
	}
	if err := inspectorID.Validate(); err != nil {
		return ReinspectionResult{}, err
	}
	return ReinspectionResult{verdict: verdict, inspectorID: inspectorID, guard: guard.NewConstructorGuard()}, nil
}

func (p ReinspectionResult) Kind() PayloadKind            { return KindReinspection }
func (p ReinspectionResult) Validate() error              { return p.guard.Validate(ErrReinspectionIsNotConstructed) }
func (ReinspectionResult) isPayload()                     {}
func (p ReinspectionResult) Verdict() ReinspectionVerdict { return p.verdict }
func (p ReinspectionResult) InspectorID() kernel.ActorID  { return p.inspectorID }

type ShipmentDetails struct {
	carrier        string
	trackingNumber string
	guard          guard.ConstructorGuard
}

func NewShipmentDetails(carrier, trackingNumber string) (ShipmentDetails, error) {
	carrier, trackingNumber = strings.TrimSpace(carrier), strings.TrimSpace(trackingNumber)
	if err := errors.Join(
		requiredString("carrier", carrier),
		requiredString("tracking number", trackingNumber),
	); err != nil {
		return ShipmentDetails{}, err
	}
	return ShipmentDetails{carrier: carrier, trackingNumber: trackingNumber, guard: guard.NewConstructorGuard()}, nil
}

func (p ShipmentDetails) Kind() PayloadKind      { return KindShipment }
func (p ShipmentDetails) Validate() error        { return p.guard.Validate(ErrShipmentIsNotConstructed) }
func (ShipmentDetails) isPayload()               {}
func (p ShipmentDetails) Carrier() string        { return p.carrier }
func (p ShipmentDetails) TrackingNumber() string { return p.trackingNumber }

// Reassignment hands an order from one tailor or inspector to another. From
// is optional; when set it must name the current holder.
type Reassignment struct {
	from   kernel.ActorID
	to     kernel.ActorID
	reason string
	guard  guard.ConstructorGuard
}

func NewReassignment(from, to kernel.ActorID, reason string) (Reassignment, error) {
	if err := to.Validate(); err != nil {
		return Reassignment{}, err
	}
	if !from.IsZero() && from.IsEqual(to) {
		return Reassignment{}, errs.NewValueIsInvalidErrorWithCause("reassignment",
			fmt.Errorf("%s cannot be reassigned to itself", to))
	}
	return Reassignment{from: from, to: to, reason: strings.TrimSpace(reason), guard: guard.NewConstructorGuard()}, nil
}

func (p Reassignment) Kind() PayloadKind    { return KindReassignment }
func (p Reassignment) Validate() error      { return p.guard.Validate(ErrReassignmentIsNotConstructed) }
func (Reassignment) isPayload()             {}
func (p Reassignment) From() kernel.ActorID { return p.from }
func (p Reassignment) To() kernel.ActorID   { return p.to }
func (p Reassignment) Reason() string       { return p.reason }

func requiredString(param, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(param)
	}
	return nil
}
