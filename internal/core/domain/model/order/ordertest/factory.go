// Package ordertest builds orders in any lifecycle state for tests, with the
// fields each state implies already filled in.
package ordertest

import (
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
)

const (
	DefaultOrderID   = "SDS-20260101-0001-A"
	DefaultCustomer  = "cust_fixture"
	DefaultTailor    = "tailor_fixture"
	DefaultInspector = "inspector_fixture"
	DefaultCourier   = "courier_fixture"
)

// DefaultTime is 10:00 IST, inside the payout window.
var DefaultTime = time.Date(2026, 1, 1, 4, 30, 0, 0, time.UTC)

type config struct {
	id           kernel.OrderID
	details      order.Details
	enteredAt    time.Time
	tailor       kernel.ActorID
	measurements order.Measurements
	version      int64
}

type Option func(*config)

func WithID(id string) Option {
	return func(c *config) { c.id = kernel.MustParseOrderID(id) }
}

func WithPriority(p order.Priority) Option {
	return func(c *config) { c.details.Priority = p }
}

// WithEnteredAt sets when the order entered its current state. Dispute
// deadlines are derived from it.
func WithEnteredAt(t time.Time) Option {
	return func(c *config) { c.enteredAt = t }
}

func WithTailor(id string) Option {
	return func(c *config) { c.tailor = kernel.MustNewActorID(id) }
}

func WithMeasurements(m order.Measurements) Option {
	return func(c *config) { c.measurements = m }
}

func WithVersion(v int64) Option {
	return func(c *config) { c.version = v }
}

// ValidMeasurements returns all P0 and P1 codes above their thresholds.
func ValidMeasurements() order.Measurements {
	entries := make(map[order.MeasurementCode]order.Measurement)
	value := 40.0
	for _, code := range order.P0Codes() {
		entries[code] = mustMeasurement(value, 0.95)
		value += 5
	}
	for _, code := range order.P1Codes() {
		entries[code] = mustMeasurement(value, 0.9)
		value += 2
	}
	m, err := order.NewMeasurements(entries)
	if err != nil {
		panic(err)
	}
	return m
}

// Measurements builds a set from code/confidence pairs with plausible values.
func Measurements(confidences map[order.MeasurementCode]float64) order.Measurements {
	entries := make(map[order.MeasurementCode]order.Measurement, len(confidences))
	for code, confidence := range confidences {
		entries[code] = mustMeasurement(50, confidence)
	}
	m, err := order.NewMeasurements(entries)
	if err != nil {
		panic(err)
	}
	return m
}

func mustMeasurement(value, confidence float64) order.Measurement {
	m, err := order.NewMeasurement(value, order.UnitCentimetres, confidence)
	if err != nil {
		panic(err)
	}
	return m
}

// New returns a stored order (version 1 unless overridden) in state. It
// panics when the requested combination breaks an order invariant.
func New(state order.State, opts ...Option) *order.Order {
	o, err := Build(state, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

// Build is New without the panic.
func Build(state order.State, opts ...Option) (*order.Order, error) {
	c := config{
		id: kernel.MustParseOrderID(DefaultOrderID),
		details: order.Details{
			CustomerID:  DefaultCustomer,
			GarmentType: "shirt",
			FitType:     "regular",
			Priority:    order.PriorityNormal,
		},
		enteredAt:    DefaultTime,
		tailor:       kernel.MustNewActorID(DefaultTailor),
		measurements: ValidMeasurements(),
		version:      1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return order.RestoreOrder(snapshotFor(state, c))
}

func snapshotFor(state order.State, c config) order.Snapshot {
	files, _ := order.NewFileSet(state.Reached(order.PatternReady), state.Reached(order.PatternReady), state.Reached(order.PatternReady))
	s := order.Snapshot{
		ID:             c.id,
		Details:        c.details,
		CreatedAt:      c.enteredAt.Add(-time.Hour),
		State:          state,
		StateEnteredAt: c.enteredAt,
		LastTrigger:    triggerInto(state),
		Files:          files,
		PayoutEligible: state != order.TotalFail,
		Version:        c.version,
	}

	if state.Reached(order.ScanReceived) {
		s.Measurements = c.measurements
		s.MeasurementFlags = c.measurements.Flags()
	}
	if state.Reached(order.Claimed) {
		s.TailorID = c.tailor
	}
	if state.Reached(order.Dispatching) {
		s.CourierID = kernel.MustNewActorID(DefaultCourier)
	}
	if state.Reached(order.QCInProgress) {
		s.InspectorID = kernel.MustNewActorID(DefaultInspector)
	}

	inspector := kernel.MustNewActorID(DefaultInspector)
	switch {
	case state.InDisputeFamily():
		qc := order.QCResult{Verdict: order.VerdictFail, Category: "CRITICAL_FAIL", InspectorID: inspector,
			FabricCost: 120000, LaborFee: 80000, RecordedAt: c.enteredAt}
		s.QC = &qc
		s.Dispute = disputeFor(state, c)
		if state == order.TotalFail {
			s.Payout = &order.Payout{TotalDue: qc.TotalDue(), Status: order.PayoutWithheld}
		}
		if state == order.DisputeUpheld {
			s.Payout = &order.Payout{TotalDue: qc.TotalDue(), Status: order.PayoutPending}
		}
	case state.Reached(order.QCPass):
		qc := order.QCResult{Verdict: order.VerdictPass, InspectorID: inspector,
			FabricCost: 120000, LaborFee: 80000, RecordedAt: c.enteredAt}
		s.QC = &qc
		s.Payout = &order.Payout{TotalDue: qc.TotalDue(), Status: order.PayoutPending}
	}

	if state.Reached(order.Shipped) {
		s.Shipment = &order.Shipment{Carrier: "BlueDart", TrackingNumber: "BD123456789IN"}
	}
	return s
}

func disputeFor(state order.State, c config) *order.Dispute {
	d := &order.Dispute{OpenedAt: c.enteredAt}
	if state.HasDisputeDeadline() {
		d.Deadline = c.enteredAt.Add(order.DisputeWindow)
	}
	switch state {
	case order.DisputedAwaitingReinspection:
		d.FiledAt = c.enteredAt
		d.TailorID = c.tailor
		d.Reason = "seam allowance matches pattern"
	case order.TotalFail:
		d.FiledAt = c.enteredAt
		d.TailorID = c.tailor
		d.Reason = "seam allowance matches pattern"
		d.Verdict = order.ReinspectionConfirmFail
		d.InspectorID = kernel.MustNewActorID(DefaultInspector)
		d.ReinspectedAt = c.enteredAt
	case order.DisputeUpheld:
		d.FiledAt = c.enteredAt
		d.TailorID = c.tailor
		d.Reason = "seam allowance matches pattern"
		d.Verdict = order.ReinspectionPass
		d.InspectorID = kernel.MustNewActorID(DefaultInspector)
		d.ReinspectedAt = c.enteredAt
	}
	return d
}

// triggerInto returns the first trigger of the table that leads to state.
func triggerInto(state order.State) order.Trigger {
	if state == order.TotalFail {
		return order.ReinspectionConfirmedFail
	}
	for info := range order.States() {
		transitions, _ := order.TransitionsFrom(info.Code)
		for trigger, to := range transitions {
			if to == state {
				return trigger
			}
		}
	}
	return order.OrderCreated
}
