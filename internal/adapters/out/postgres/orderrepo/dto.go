// Package orderrepo persists order aggregates and their transition history
// with GORM. Nested value objects are stored as JSONB documents; the
// columns that queries filter on (state, dispute deadline) are kept flat.
package orderrepo

import (
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID               string `gorm:"primaryKey;size:32"`
	CustomerID       string
	GarmentType      string
	FitType          string
	Priority         int
	CreatedAt        time.Time
	State            string `gorm:"size:4;index"`
	StateEnteredAt   time.Time
	LastTrigger      string
	Measurements     map[string]MeasurementDTO `gorm:"type:jsonb;serializer:json"`
	MeasurementFlags []MeasurementFlagDTO      `gorm:"type:jsonb;serializer:json"`
	FilesReady       bool
	TailorID         *string
	InspectorID      *string
	CourierID        *string
	QC               *QCDTO       `gorm:"column:qc;type:jsonb;serializer:json"`
	Dispute          *DisputeDTO  `gorm:"type:jsonb;serializer:json"`
	DisputeDeadline  *time.Time   `gorm:"index"`
	PayoutEligible   bool
	Payout           *PayoutDTO   `gorm:"type:jsonb;serializer:json"`
	Shipment         *ShipmentDTO `gorm:"type:jsonb;serializer:json"`
	Version          int64
}

func (OrderDTO) TableName() string {
	return "orders"
}

type MeasurementDTO struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}

type MeasurementFlagDTO struct {
	Code       string  `json:"code"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	Reason     string  `json:"reason"`
}

type QCDTO struct {
	Verdict     string    `json:"verdict"`
	Category    string    `json:"category,omitempty"`
	InspectorID string    `json:"inspector_id"`
	FabricCost  int64     `json:"fabric_cost"`
	LaborFee    int64     `json:"labor_fee"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type DisputeDTO struct {
	OpenedAt      time.Time `json:"opened_at"`
	Deadline      time.Time `json:"deadline,omitzero"`
	FiledAt       time.Time `json:"filed_at,omitzero"`
	TailorID      string    `json:"tailor_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Verdict       string    `json:"verdict,omitempty"`
	InspectorID   string    `json:"inspector_id,omitempty"`
	ReinspectedAt time.Time `json:"reinspected_at,omitzero"`
	Expired       bool      `json:"expired,omitempty"`
}

type PayoutDTO struct {
	TotalDue int64  `json:"total_due"`
	Status   string `json:"status"`
}

type ShipmentDTO struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

// TransitionDTO is one row of the append-only history.
type TransitionDTO struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	OrderID   string    `gorm:"size:32;index"`
	FromState *string   `gorm:"size:4"`
	ToState   string    `gorm:"size:4"`
	Trigger   string
	Actor     string
	At        time.Time
	Automatic bool
}

func (TransitionDTO) TableName() string {
	return "order_transitions"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	measurements := make(map[string]MeasurementDTO, s.Measurements.Len())
	for code, m := range s.Measurements.All() {
		measurements[string(code)] = MeasurementDTO{Value: m.Value(), Unit: m.Unit(), Confidence: m.Confidence()}
	}

	flags := make([]MeasurementFlagDTO, 0, len(s.MeasurementFlags))
	for _, f := range s.MeasurementFlags {
		flags = append(flags, MeasurementFlagDTO{
			Code:       string(f.Code),
			Class:      string(f.Class),
			Confidence: f.Confidence,
			Threshold:  f.Threshold,
			Reason:     string(f.Reason),
		})
	}

	dto := OrderDTO{
		ID:               s.ID.String(),
		CustomerID:       s.Details.CustomerID,
		GarmentType:      s.Details.GarmentType,
		FitType:          s.Details.FitType,
		Priority:         int(s.Details.Priority),
		CreatedAt:        s.CreatedAt,
		State:            string(s.State),
		StateEnteredAt:   s.StateEnteredAt,
		LastTrigger:      string(s.LastTrigger),
		Measurements:     measurements,
		MeasurementFlags: flags,
		FilesReady:       s.Files.All(),
		TailorID:         optionalActor(s.TailorID),
		InspectorID:      optionalActor(s.InspectorID),
		CourierID:        optionalActor(s.CourierID),
		PayoutEligible:   s.PayoutEligible,
		Version:          s.Version + 1,
	}

	if qc := s.QC; qc != nil {
		dto.QC = &QCDTO{
			Verdict:     string(qc.Verdict),
			Category:    qc.Category,
			InspectorID: qc.InspectorID.String(),
			FabricCost:  qc.FabricCost,
			LaborFee:    qc.LaborFee,
			RecordedAt:  qc.RecordedAt,
		}
	}
	if d := s.Dispute; d != nil {
		dto.Dispute = &DisputeDTO{
			OpenedAt:      d.OpenedAt,
			Deadline:      d.Deadline,
			FiledAt:       d.FiledAt,
			TailorID:      d.TailorID.String(),
			Reason:        d.Reason,
			Verdict:       string(d.Verdict),
			InspectorID:   d.InspectorID.String(),
			ReinspectedAt: d.ReinspectedAt,
			Expired:       d.Expired,
		}
		if d.HasDeadline() {
			deadline := d.Deadline
			dto.DisputeDeadline = &deadline
		}
	}
	if p := s.Payout; p != nil {
		dto.Payout = &PayoutDTO{TotalDue: p.TotalDue, Status: string(p.Status)}
	}
	if sh := s.Shipment; sh != nil {
		dto.Shipment = &ShipmentDTO{Carrier: sh.Carrier, TrackingNumber: sh.TrackingNumber}
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.ParseOrderID(dto.ID)
	if err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID: id,
		Details: order.Details{
			CustomerID:  dto.CustomerID,
			GarmentType: dto.GarmentType,
			FitType:     dto.FitType,
			Priority:    order.Priority(dto.Priority),
		},
		CreatedAt:      dto.CreatedAt,
		State:          order.State(dto.State),
		StateEnteredAt: dto.StateEnteredAt,
		LastTrigger:    order.Trigger(dto.LastTrigger),
		PayoutEligible: dto.PayoutEligible,
		Version:        dto.Version,
	}

	if len(dto.Measurements) > 0 {
		entries := make(map[order.MeasurementCode]order.Measurement, len(dto.Measurements))
		for code, m := range dto.Measurements {
			if entries[order.MeasurementCode(code)], err = order.NewMeasurement(m.Value, m.Unit, m.Confidence); err != nil {
				return nil, err
			}
		}
		if s.Measurements, err = order.NewMeasurements(entries); err != nil {
			return nil, err
		}
	}
	for _, f := range dto.MeasurementFlags {
		s.MeasurementFlags = append(s.MeasurementFlags, order.MeasurementFlag{
			Code:       order.MeasurementCode(f.Code),
			Class:      order.MeasurementClass(f.Class),
			Confidence: f.Confidence,
			Threshold:  f.Threshold,
			Reason:     order.FlagReason(f.Reason),
		})
	}

	if s.Files, err = order.NewFileSet(dto.FilesReady, dto.FilesReady, dto.FilesReady); err != nil {
		return nil, err
	}
	if s.TailorID, err = restoreActor(dto.TailorID); err != nil {
		return nil, err
	}
	if s.InspectorID, err = restoreActor(dto.InspectorID); err != nil {
		return nil, err
	}
	if s.CourierID, err = restoreActor(dto.CourierID); err != nil {
		return nil, err
	}

	if dto.QC != nil {
		inspector, err := restoreActor(&dto.QC.InspectorID)
		if err != nil {
			return nil, err
		}
		s.QC = &order.QCResult{
			Verdict:     order.Verdict(dto.QC.Verdict),
			Category:    dto.QC.Category,
			InspectorID: inspector,
			FabricCost:  dto.QC.FabricCost,
			LaborFee:    dto.QC.LaborFee,
			RecordedAt:  dto.QC.RecordedAt,
		}
	}
	if d := dto.Dispute; d != nil {
		tailor, err := restoreActor(&d.TailorID)
		if err != nil {
			return nil, err
		}
		inspector, err := restoreActor(&d.InspectorID)
		if err != nil {
			return nil, err
		}
		s.Dispute = &order.Dispute{
			OpenedAt:      d.OpenedAt,
			Deadline:      d.Deadline,
			FiledAt:       d.FiledAt,
			TailorID:      tailor,
			Reason:        d.Reason,
			Verdict:       order.ReinspectionVerdict(d.Verdict),
			InspectorID:   inspector,
			ReinspectedAt: d.ReinspectedAt,
			Expired:       d.Expired,
		}
	}
	if dto.Payout != nil {
		s.Payout = &order.Payout{TotalDue: dto.Payout.TotalDue, Status: order.PayoutStatus(dto.Payout.Status)}
	}
	if dto.Shipment != nil {
		s.Shipment = &order.Shipment{Carrier: dto.Shipment.Carrier, TrackingNumber: dto.Shipment.TrackingNumber}
	}

	return order.RestoreOrder(s)
}

func transitionFromDomain(t order.Transition) TransitionDTO {
	var from *string
	if t.From != "" {
		raw := string(t.From)
		from = &raw
	}
	return TransitionDTO{
		ID:        t.ID.UUID(),
		OrderID:   t.OrderID.String(),
		FromState: from,
		ToState:   string(t.To),
		Trigger:   string(t.Trigger),
		Actor:     t.Actor.String(),
		At:        t.At,
		Automatic: t.Automatic,
	}
}

func transitionToDomain(dto TransitionDTO) (order.Transition, error) {
	orderID, err := kernel.ParseOrderID(dto.OrderID)
	if err != nil {
		return order.Transition{}, err
	}
	actor, err := kernel.NewActorID(dto.Actor)
	if err != nil {
		return order.Transition{}, err
	}
	eventID, err := kernel.EventIDFromUUID(dto.ID)
	if err != nil {
		return order.Transition{}, err
	}
	t := order.Transition{
		ID:        eventID,
		OrderID:   orderID,
		To:        order.State(dto.ToState),
		Trigger:   order.Trigger(dto.Trigger),
		Actor:     actor,
		At:        dto.At,
		Automatic: dto.Automatic,
	}
	if dto.FromState != nil {
		t.From = order.State(*dto.FromState)
	}
	return t, nil
}

func optionalActor(id kernel.ActorID) *string {
	if id.IsZero() {
		return nil
	}
	raw := id.String()
	return &raw
}

func restoreActor(raw *string) (kernel.ActorID, error) {
	if raw == nil || *raw == "" {
		return kernel.ActorID{}, nil
	}
	return kernel.NewActorID(*raw)
}
