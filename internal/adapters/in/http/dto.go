package http

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/application/usecases/queries"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
)

type Measurement struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	Confidence float64 `json:"confidence"`
}

type NewOrder struct {
	OrderID      string                 `json:"order_id"`
	CustomerID   string                 `json:"customer_id"`
	GarmentType  string                 `json:"garment_type"`
	FitType      string                 `json:"fit_type"`
	Priority     string                 `json:"priority,omitempty"`
	Measurements map[string]Measurement `json:"measurements,omitempty"`
}

func (r NewOrder) measurementInputs() map[string]commands.MeasurementInput {
	if len(r.Measurements) == 0 {
		return nil
	}
	out := make(map[string]commands.MeasurementInput, len(r.Measurements))
	for code, m := range r.Measurements {
		out[code] = commands.MeasurementInput{Value: m.Value, Unit: m.Unit, Confidence: m.Confidence}
	}
	return out
}

// Payload is the union of every trigger payload on the wire. Only the
// fields of the variant the trigger expects are read. Method and Category
// are older spellings of PaymentMethod and VerdictCategory.
type Payload struct {
	PaymentMethod    string                 `json:"payment_method,omitempty"`
	Method           string                 `json:"method,omitempty"`
	Amount           int64                  `json:"amount,omitempty"`
	Currency         string                 `json:"currency,omitempty"`
	Reference        string                 `json:"reference,omitempty"`
	Measurements     map[string]Measurement `json:"measurements,omitempty"`
	AcknowledgeFlags bool                   `json:"acknowledge_flags,omitempty"`
	TailorID         string                 `json:"tailor_id,omitempty"`
	CourierID        string                 `json:"courier_id,omitempty"`
	InspectorID      string                 `json:"inspector_id,omitempty"`
	Verdict          string                 `json:"verdict,omitempty"`
	VerdictCategory  string                 `json:"verdict_category,omitempty"`
	Category         string                 `json:"category,omitempty"`
	FabricCost       int64                  `json:"fabric_cost,omitempty"`
	LaborFee         int64                  `json:"labor_fee,omitempty"`
	Reason           string                 `json:"reason,omitempty"`
	Carrier          string                 `json:"carrier,omitempty"`
	TrackingNumber   string                 `json:"tracking_number,omitempty"`
	From             string                 `json:"from,omitempty"`
	To               string                 `json:"to,omitempty"`
}

type TransitionRequest struct {
	Trigger string          `json:"trigger"`
	ActorID string          `json:"actor_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ClaimRequest struct {
	TailorID string `json:"tailor_id"`
}

type DisputeRequest struct {
	TailorID string `json:"tailor_id"`
	Reason   string `json:"reason"`
}

type ReinspectRequest struct {
	Verdict     string `json:"verdict"`
	InspectorID string `json:"inspector_id"`
}

type QCRequest struct {
	Verdict         string `json:"verdict"`
	VerdictCategory string `json:"verdict_category,omitempty"`
	Category        string `json:"category,omitempty"`
	InspectorID     string `json:"inspector_id"`
	FabricCost      int64  `json:"fabric_cost"`
	LaborFee        int64  `json:"labor_fee"`
}

func (r QCRequest) category() string {
	return cmp.Or(r.VerdictCategory, r.Category)
}

type InspectorReassignRequest struct {
	FromInspector string `json:"from_inspector,omitempty"`
	ToInspector   string `json:"to_inspector"`
	Reason        string `json:"reason,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
}

type TailorReassignRequest struct {
	FromTailor string `json:"from_tailor,omitempty"`
	ToTailor   string `json:"to_tailor"`
	Reason     string `json:"reason,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
}

// toPayload builds the payload variant trigger expects out of the wire
// union. Constructor errors are wrapped as invalid payloads of trigger.
func toPayload(trigger order.Trigger, raw json.RawMessage) (order.Payload, error) {
	var p Payload
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &order.InvalidPayloadError{Trigger: trigger, Cause: err}
		}
	}

	payload, err := p.build(trigger)
	if err != nil {
		return nil, &order.InvalidPayloadError{Trigger: trigger, Cause: err}
	}
	return payload, nil
}

func (p Payload) build(trigger order.Trigger) (order.Payload, error) {
	switch order.PayloadKindFor(trigger) {
	case order.KindPayment:
		return order.NewPaymentConfirmation(cmp.Or(p.PaymentMethod, p.Method), p.Amount, p.Currency, p.Reference)
	case order.KindScan:
		m, err := measurements(p.Measurements)
		if err != nil {
			return nil, err
		}
		return order.NewScanResult(m)
	case order.KindProcessing:
		return order.NewProcessingStart(p.AcknowledgeFlags), nil
	case order.KindClaim:
		tailor, err := kernel.NewActorID(p.TailorID)
		if err != nil {
			return nil, err
		}
		return order.NewClaimRequest(tailor)
	case order.KindCourier:
		courier, err := kernel.NewActorID(p.CourierID)
		if err != nil {
			return nil, err
		}
		return order.NewCourierBooking(courier)
	case order.KindInspection:
		inspector, err := kernel.NewActorID(p.InspectorID)
		if err != nil {
			return nil, err
		}
		return order.NewInspectionStart(inspector)
	case order.KindQCVerdict:
		return qcVerdict(p.Verdict, cmp.Or(p.VerdictCategory, p.Category), p.InspectorID, p.FabricCost, p.LaborFee)
	case order.KindDispute:
		tailor, err := kernel.NewActorID(p.TailorID)
		if err != nil {
			return nil, err
		}
		return order.NewDisputeSubmission(tailor, p.Reason)
	case order.KindReinspection:
		return reinspection(p.Verdict, p.InspectorID)
	case order.KindShipment:
		return order.NewShipmentDetails(p.Carrier, p.TrackingNumber)
	case order.KindReassignment:
		return reassignment(p.From, p.To, p.Reason)
	default:
		return order.NoPayload{}, nil
	}
}

func qcVerdict(rawVerdict, category, inspectorID string, fabricCost, laborFee int64) (order.QCVerdict, error) {
	verdict, err := order.ParseVerdict(rawVerdict)
	if err != nil {
		return order.QCVerdict{}, err
	}
	inspector, err := kernel.NewActorID(inspectorID)
	if err != nil {
		return order.QCVerdict{}, err
	}
	return order.NewQCVerdict(verdict, category, inspector, fabricCost, laborFee)
}

func reinspection(rawVerdict, inspectorID string) (order.ReinspectionResult, error) {
	verdict, err := order.ParseReinspectionVerdict(rawVerdict)
	if err != nil {
		return order.ReinspectionResult{}, err
	}
	inspector, err := kernel.NewActorID(inspectorID)
	if err != nil {
		return order.ReinspectionResult{}, err
	}
	return order.NewReinspectionResult(verdict, inspector)
}

// reassignment builds a hand-over; an empty from skips the holder check.
func reassignment(from, to, reason string) (order.Reassignment, error) {
	var previous kernel.ActorID
	if from != "" {
		id, err := kernel.NewActorID(from)
		if err != nil {
			return order.Reassignment{}, err
		}
		previous = id
	}
	next, err := kernel.NewActorID(to)
	if err != nil {
		return order.Reassignment{}, err
	}
	return order.NewReassignment(previous, next, reason)
}

func measurements(raw map[string]Measurement) (order.Measurements, error) {
	entries := make(map[order.MeasurementCode]order.Measurement, len(raw))
	for _, code := range sortedCodes(raw) {
		in := raw[code]
		m, err := order.NewMeasurement(in.Value, in.Unit, in.Confidence)
		if err != nil {
			return order.Measurements{}, fmt.Errorf("%s: %w", code, err)
		}
		entries[order.MeasurementCode(code)] = m
	}
	return order.NewMeasurements(entries)
}

type Files struct {
	PLT bool `json:"plt"`
	PDS bool `json:"pds"`
	DXF bool `json:"dxf"`
}

type MeasurementFlag struct {
	Code       string  `json:"code"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	Reason     string  `json:"reason"`
}

type QC struct {
	Verdict     string `json:"verdict"`
	Category    string `json:"category,omitempty"`
	InspectorID string `json:"inspector_id"`
}

type Dispute struct {
	OpenedAt              time.Time  `json:"opened_at"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	Reason                string     `json:"reason,omitempty"`
	DisputingTailorID     string     `json:"disputing_tailor_id,omitempty"`
	ReinspectionVerdict   string     `json:"reinspection_verdict,omitempty"`
	ReinspectionInspector string     `json:"reinspection_inspector_id,omitempty"`
	Expired               bool       `json:"expired,omitempty"`
}

type Payout struct {
	TotalDue int64  `json:"total_due"`
	Status   string `json:"status"`
}

type Shipment struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type SLA struct {
	MaxMinutes    float64   `json:"max_minutes"`
	TargetMinutes float64   `json:"target_minutes"`
	Elapsed       float64   `json:"elapsed_minutes"`
	DueAt         time.Time `json:"due_at"`
	OverTarget    bool      `json:"over_target"`
	Overdue       bool      `json:"overdue"`
}

// Order is the status of an order as returned by every endpoint.
type Order struct {
	OrderID             string                 `json:"order_id"`
	State               string                 `json:"state"`
	StateName           string                 `json:"state_name"`
	IsTerminal          bool                   `json:"is_terminal"`
	StateEnteredAt      time.Time              `json:"state_entered_at"`
	LastTrigger         string                 `json:"last_trigger"`
	CustomerID          string                 `json:"customer_id"`
	GarmentType         string                 `json:"garment_type"`
	FitType             string                 `json:"fit_type"`
	Priority            string                 `json:"priority"`
	Measurements        map[string]Measurement `json:"measurements,omitempty"`
	MeasurementFlags    []MeasurementFlag      `json:"measurement_flags"`
	AssignedTailorID    string                 `json:"assigned_tailor_id,omitempty"`
	AssignedInspectorID string                 `json:"assigned_inspector_id,omitempty"`
	CourierID           string                 `json:"courier_id,omitempty"`
	FilesAvailable      Files                  `json:"files_available"`
	PayoutEligible      bool                   `json:"payout_eligible"`
	QC                  *QC                    `json:"qc,omitempty"`
	Dispute             *Dispute               `json:"dispute,omitempty"`
	Payout              *Payout                `json:"payout,omitempty"`
	Shipment            *Shipment              `json:"shipment,omitempty"`
	SLA                 *SLA                   `json:"sla,omitempty"`
	Version             int64                  `json:"version"`
}

func toOrder(o *order.Order, status *order.SLAStatus) Order {
	d := o.Details()
	resp := Order{
		OrderID:             o.ID().String(),
		State:               o.State().String(),
		StateName:           o.State().Name(),
		IsTerminal:          o.IsTerminal(),
		StateEnteredAt:      o.StateEnteredAt(),
		LastTrigger:         o.LastTrigger().String(),
		CustomerID:          d.CustomerID,
		GarmentType:         d.GarmentType,
		FitType:             d.FitType,
		Priority:            d.Priority.String(),
		MeasurementFlags:    make([]MeasurementFlag, 0),
		AssignedTailorID:    o.AssignedTailor().String(),
		AssignedInspectorID: o.AssignedInspector().String(),
		CourierID:           o.Courier().String(),
		FilesAvailable: Files{
			PLT: o.FilesAvailable().PLT(),
			PDS: o.FilesAvailable().PDS(),
			DXF: o.FilesAvailable().DXF(),
		},
		PayoutEligible: o.PayoutEligible(),
		Version:        o.Version(),
	}

	if !o.Measurements().IsEmpty() {
		resp.Measurements = make(map[string]Measurement, o.Measurements().Len())
		for code, m := range o.Measurements().All() {
			resp.Measurements[string(code)] = Measurement{Value: m.Value(), Unit: m.Unit(), Confidence: m.Confidence()}
		}
	}
	for _, f := range o.MeasurementFlags() {
		resp.MeasurementFlags = append(resp.MeasurementFlags, MeasurementFlag{
			Code:       string(f.Code),
			Class:      string(f.Class),
			Confidence: f.Confidence,
			Threshold:  f.Threshold,
			Reason:     string(f.Reason),
		})
	}
	if qc := o.QC(); qc != nil {
		resp.QC = &QC{Verdict: string(qc.Verdict), Category: qc.Category, InspectorID: qc.InspectorID.String()}
	}
	if dispute := o.Dispute(); dispute != nil {
		resp.Dispute = &Dispute{
			OpenedAt:              dispute.OpenedAt,
			Reason:                dispute.Reason,
			DisputingTailorID:     dispute.TailorID.String(),
			ReinspectionVerdict:   string(dispute.Verdict),
			ReinspectionInspector: dispute.InspectorID.String(),
			Expired:               dispute.Expired,
		}
		if dispute.HasDeadline() {
			deadline := dispute.Deadline
			resp.Dispute.Deadline = &deadline
		}
	}
	if payout := o.Payout(); payout != nil {
		resp.Payout = &Payout{TotalDue: payout.TotalDue, Status: string(payout.Status)}
	}
	if shipment := o.Shipment(); shipment != nil {
		resp.Shipment = &Shipment{Carrier: shipment.Carrier, TrackingNumber: shipment.TrackingNumber}
	}
	if status != nil {
		resp.SLA = &SLA{
			MaxMinutes:    status.Max.Minutes(),
			TargetMinutes: status.Target.Minutes(),
			Elapsed:       status.Elapsed.Minutes(),
			DueAt:         status.DueAt,
			OverTarget:    status.OverTarget,
			Overdue:       status.Overdue,
		}
	}
	return resp
}

type Transition struct {
	ID        string    `json:"id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Trigger   string    `json:"trigger"`
	ActorID   string    `json:"actor_id"`
	At        time.Time `json:"at"`
	Automatic bool      `json:"automatic"`
}

func toTransitions(history []order.Transition) []Transition {
	out := make([]Transition, 0, len(history))
	for _, t := range history {
		out = append(out, Transition{
			ID:        t.ID.String(),
			From:      t.From.String(),
			To:        t.To.String(),
			Trigger:   t.Trigger.String(),
			ActorID:   t.Actor.String(),
			At:        t.At,
			Automatic: t.Automatic,
		})
	}
	return out
}

type SLAEntry struct {
	StateName     string  `json:"state_name"`
	MaxMinutes    float64 `json:"max_minutes"`
	TargetMinutes float64 `json:"target_minutes"`
	MaxHours      float64 `json:"max_hours"`
	TargetHours   float64 `json:"target_hours"`
}

func toSLATable(table []order.SLA) map[string]SLAEntry {
	out := make(map[string]SLAEntry, len(table))
	for _, sla := range table {
		out[sla.State.String()] = SLAEntry{
			StateName:     sla.State.Name(),
			MaxMinutes:    sla.Max.Minutes(),
			TargetMinutes: sla.Target.Minutes(),
			MaxHours:      sla.Max.Hours(),
			TargetHours:   sla.Target.Hours(),
		}
	}
	return out
}

func toJobBoard(board []queries.GetJobBoardQueryResponse) []Order {
	out := make([]Order, 0, len(board))
	for _, entry := range board {
		waiting := entry.Waiting
		out = append(out, toOrder(entry.Order, &waiting))
	}
	return out
}

func toOverdue(overdue []queries.GetOverdueOrdersQueryResponse) []Order {
	out := make([]Order, 0, len(overdue))
	for _, entry := range overdue {
		status := entry.Status
		out = append(out, toOrder(entry.Order, &status))
	}
	return out
}

func sortedCodes(m map[string]Measurement) []string {
	return slices.Sorted(maps.Keys(m))
}
