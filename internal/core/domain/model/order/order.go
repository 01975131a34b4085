package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created
	// through NewOrder, NewPaidOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of the garment lifecycle.
//
// An Order value is never modified after construction. Apply and Resolve
// return a new snapshot, so a caller holding an Order always observes a
// state together with every field that state implies.
type Order struct {
	id          kernel.OrderID
	customerID  string
	garmentType string
	fitType     string
	priority    Priority
	createdAt   time.Time

	state          State
	stateEnteredAt time.Time
	lastTrigger    Trigger

	measurements     Measurements
	measurementFlags []MeasurementFlag
	files            FileSet

	tailorID    kernel.ActorID
	inspectorID kernel.ActorID
	courierID   kernel.ActorID

	qc             *QCResult
	dispute        *Dispute
	payoutEligible bool
	payout         *Payout
	shipment       *Shipment

	// version is the stored revision this snapshot derives from and
	// baseState the state stored under that revision. Together they key
	// the compare-and-swap performed by repositories.
	version   int64
	baseState State

	// changes holds transitions applied since the snapshot was loaded.
	changes []Transition

	isConstructed bool
}

// Details are the customer-facing attributes fixed at creation.
type Details struct {
	CustomerID  string
	GarmentType string
	FitType     string
	Priority    Priority
}

func (d Details) validate() error {
	return errors.Join(
		requiredString("customer id", strings.TrimSpace(d.CustomerID)),
		requiredString("garment type", strings.TrimSpace(d.GarmentType)),
		requiredString("fit type", strings.TrimSpace(d.FitType)),
		d.Priority.Validate(),
	)
}

// NewOrder creates a draft order awaiting payment.
func NewOrder(id kernel.OrderID, details Details, now time.Time) (*Order, error) {
	return newOrderAt(id, details, Draft, now)
}

// NewPaidOrder creates an order whose payment was confirmed upstream. The
// scan backend ingests orders this way and immediately applies
// scan_received.
func NewPaidOrder(id kernel.OrderID, details Details, now time.Time) (*Order, error) {
	return newOrderAt(id, details, Paid, now)
}

func newOrderAt(id kernel.OrderID, details Details, state State, now time.Time) (*Order, error) {
	if err := errors.Join(id.Validate(), details.validate()); err != nil {
		return nil, err
	}
	if now.IsZero() {
		return nil, errs.NewValueIsRequiredError("creation time")
	}

	o := &Order{
		id:             id,
		customerID:     strings.TrimSpace(details.CustomerID),
		garmentType:    strings.TrimSpace(details.GarmentType),
		fitType:        strings.TrimSpace(details.FitType),
		priority:       details.Priority,
		createdAt:      now,
		state:          state,
		stateEnteredAt: now,
		lastTrigger:    OrderCreated,
		payoutEligible: true,
		isConstructed:  true,
	}
	o.changes = []Transition{newTransition(id, "", state, OrderCreated, kernel.SystemActor, now)}
	return o, nil
}

// Snapshot is the flat form of an Order used by persistence adapters and
// test fixtures.
type Snapshot struct {
	ID             kernel.OrderID
	Details        Details
	CreatedAt      time.Time
	State          State
	StateEnteredAt time.Time
	LastTrigger    Trigger

	Measurements     Measurements
	MeasurementFlags []MeasurementFlag
	Files            FileSet

	TailorID    kernel.ActorID
	InspectorID kernel.ActorID
	CourierID   kernel.ActorID

	QC             *QCResult
	Dispute        *Dispute
	PayoutEligible bool
	Payout         *Payout
	Shipment       *Shipment

	Version int64
}

// RestoreOrder rebuilds a stored order and checks the invariants that tie
// fields to the state.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := errors.Join(s.ID.Validate(), s.Details.validate(), s.State.Validate()); err != nil {
		return nil, err
	}
	if err := checkStateInvariants(s); err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.ID, err)
	}

	o := &Order{
		id:               s.ID,
		customerID:       s.Details.CustomerID,
		garmentType:      s.Details.GarmentType,
		fitType:          s.Details.FitType,
		priority:         s.Details.Priority,
		createdAt:        s.CreatedAt,
		state:            s.State,
		stateEnteredAt:   s.StateEnteredAt,
		lastTrigger:      s.LastTrigger,
		measurements:     s.Measurements,
		measurementFlags: slices.Clone(s.MeasurementFlags),
		files:            s.Files,
		tailorID:         s.TailorID,
		inspectorID:      s.InspectorID,
		courierID:        s.CourierID,
		qc:               clonePtr(s.QC),
		dispute:          clonePtr(s.Dispute),
		payoutEligible:   s.PayoutEligible,
		payout:           clonePtr(s.Payout),
		shipment:         clonePtr(s.Shipment),
		version:          s.Version,
		baseState:        s.State,
		isConstructed:    true,
	}
	return o, nil
}

func checkStateInvariants(s Snapshot) error {
	var errList []error
	if s.Files.All() != s.State.Reached(PatternReady) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("files available",
			fmt.Errorf("files ready=%t contradicts state %s", s.Files.All(), s.State)))
	}
	if s.State.Reached(ScanReceived) && s.Measurements.IsEmpty() {
		errList = append(errList, errs.NewValueIsRequiredError("measurements"))
	}
	if s.State.Reached(Claimed) && s.TailorID.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("assigned tailor"))
	}
	hasDeadline := s.Dispute != nil && s.Dispute.HasDeadline()
	if hasDeadline != s.State.HasDisputeDeadline() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("dispute deadline",
			fmt.Errorf("deadline present=%t contradicts state %s", hasDeadline, s.State)))
	}
	if s.Dispute != nil && !s.State.InDisputeFamily() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("dispute",
			fmt.Errorf("state %s is outside the QC failure sub-flow", s.State)))
	}
	if !s.PayoutEligible && s.State != TotalFail {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("payout eligible",
			fmt.Errorf("only %s withholds payout, got %s", TotalFail, s.State)))
	}
	return errors.Join(errList...)
}

// Snapshot returns a copy of the order's fields.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:               o.id,
		Details:          o.Details(),
		CreatedAt:        o.createdAt,
		State:            o.state,
		StateEnteredAt:   o.stateEnteredAt,
		LastTrigger:      o.lastTrigger,
		Measurements:     o.measurements,
		MeasurementFlags: slices.Clone(o.measurementFlags),
		Files:            o.files,
		TailorID:         o.tailorID,
		InspectorID:      o.inspectorID,
		CourierID:        o.courierID,
		QC:               clonePtr(o.qc),
		Dispute:          clonePtr(o.dispute),
		PayoutEligible:   o.payoutEligible,
		Payout:           clonePtr(o.payout),
		Shipment:         clonePtr(o.shipment),
		Version:          o.version,
	}
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.OrderID { return o.id }

func (o *Order) Details() Details {
	return Details{
		CustomerID:  o.customerID,
		GarmentType: o.garmentType,
		FitType:     o.fitType,
		Priority:    o.priority,
	}
}

func (o *Order) Priority() Priority { return o.priority }

func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) State() State { return o.state }

func (o *Order) StateEnteredAt() time.Time { return o.stateEnteredAt }

// LastTrigger returns the trigger that produced the current state.
func (o *Order) LastTrigger() Trigger { return o.lastTrigger }

func (o *Order) IsTerminal() bool { return o.state.IsTerminal() }

func (o *Order) Measurements() Measurements { return o.measurements }

// MeasurementFlags returns a copy of the flags raised when the scan arrived.
func (o *Order) MeasurementFlags() []MeasurementFlag { return slices.Clone(o.measurementFlags) }

func (o *Order) FilesAvailable() FileSet { return o.files }

func (o *Order) AssignedTailor() kernel.ActorID { return o.tailorID }

func (o *Order) AssignedInspector() kernel.ActorID { return o.inspectorID }

func (o *Order) Courier() kernel.ActorID { return o.courierID }

func (o *Order) QC() *QCResult { return clonePtr(o.qc) }

func (o *Order) Dispute() *Dispute { return clonePtr(o.dispute) }

func (o *Order) PayoutEligible() bool { return o.payoutEligible }

func (o *Order) Payout() *Payout { return clonePtr(o.payout) }

func (o *Order) Shipment() *Shipment { return clonePtr(o.shipment) }

// Version is the stored revision this snapshot was derived from; zero for
// orders that were never stored.
func (o *Order) Version() int64 { return o.version }

// BaseState is the state stored under Version.
func (o *Order) BaseState() State { return o.baseState }

// Changes returns transitions applied since the order was loaded or created.
func (o *Order) Changes() []Transition { return slices.Clone(o.changes) }

func (o *Order) HasChanges() bool { return len(o.changes) > 0 }

// Persisted returns the snapshot as it reads back after a successful write:
// one revision newer, with no pending changes.
func (o *Order) Persisted() *Order {
	next := o.clone()
	next.version = o.version + 1
	next.baseState = o.state
	next.changes = nil
	return next
}

func (o *Order) clone() *Order {
	c := *o
	c.measurementFlags = slices.Clone(o.measurementFlags)
	c.qc = clonePtr(o.qc)
	c.dispute = clonePtr(o.dispute)
	c.payout = clonePtr(o.payout)
	c.shipment = clonePtr(o.shipment)
	c.changes = slices.Clone(o.changes)
	return &c
}

// enter moves the clone into to and records the transition. A
// self-transition keeps the time the state was entered.
func (o *Order) enter(to State, trigger Trigger, actor kernel.ActorID, at time.Time) {
	o.changes = append(o.changes, newTransition(o.id, o.state, to, trigger, actor, at))
	if to != o.state {
		o.stateEnteredAt = at
	}
	o.state = to
	o.lastTrigger = trigger
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
