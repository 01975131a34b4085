package order

import (
	"fmt"
	"iter"

	"patternfactory/internal/pkg/errs"
)

// Trigger names an event that moves an order between states.
type Trigger string

const (
	PaymentReceived           Trigger = "payment_received"
	ScanReceivedTrigger       Trigger = "scan_received"
	ProcessingStarted         Trigger = "processing_started"
	PatternReadyTrigger       Trigger = "pattern_ready"
	SubmittedToCutter         Trigger = "submitted_to_cutter"
	PatternCutTrigger         Trigger = "pattern_cut"
	MadeAvailableForTailors   Trigger = "available_for_tailors"
	ClaimedByTailor           Trigger = "claimed_by_tailor"
	CourierBooked             Trigger = "courier_booked"
	DispatchedTrigger         Trigger = "dispatched"
	ReceivedByTailor          Trigger = "received_by_tailor"
	ProductionStarted         Trigger = "production_started"
	ProductionComplete        Trigger = "production_complete"
	QCStarted                 Trigger = "qc_started"
	QCPassed                  Trigger = "qc_passed"
	QCFailed                  Trigger = "qc_failed"
	MovedToLabeling           Trigger = "moved_to_labeling"
	LabelingCompleted         Trigger = "labeling_completed"
	PackedTrigger             Trigger = "packed"
	ReturnedToHQ              Trigger = "returned_to_hq"
	DisputeWindowOpened       Trigger = "dispute_window_opened"
	DisputeFiled              Trigger = "dispute_filed"
	DisputeWindowExpired      Trigger = "dispute_window_expired"
	ReinspectionConfirmedFail Trigger = "reinspection_confirmed_fail"
	ReinspectionPassed        Trigger = "reinspection_passed"
	ReceivedAtHQ              Trigger = "received_at_hq"
	ShippedTrigger            Trigger = "shipped"
	DeliveredTrigger          Trigger = "delivered"
	Closed                    Trigger = "closed"
	TailorReassigned          Trigger = "tailor_reassigned"
	InspectorReassigned       Trigger = "inspector_reassigned"

	// OrderCreated is recorded in history for the creation of an order. It
	// is not part of the transition table.
	OrderCreated Trigger = "order_created"
)

type edge struct {
	from    State
	trigger Trigger
	to      State
}

var transitionTable = []edge{
	{Draft, PaymentReceived, Paid},
	{Paid, ScanReceivedTrigger, ScanReceived},
	{ScanReceived, ProcessingStarted, Processing},
	{Processing, PatternReadyTrigger, PatternReady},
	{PatternReady, SubmittedToCutter, Cutting},
	{Cutting, PatternCutTrigger, PatternCut},
	{PatternCut, MadeAvailableForTailors, AvailableForTailors},
	{AvailableForTailors, ClaimedByTailor, Claimed},
	{Claimed, CourierBooked, Dispatching},
	{Dispatching, DispatchedTrigger, InTransitToTailor},
	{InTransitToTailor, ReceivedByTailor, WithTailor},
	{WithTailor, ProductionStarted, InProduction},
	{InProduction, ProductionComplete, ReadyForQC},
	{ReadyForQC, QCStarted, QCInProgress},
	{QCInProgress, QCPassed, QCPass},
	{QCInProgress, QCFailed, QCFail},
	{QCPass, MovedToLabeling, AwaitingLabeling},
	{AwaitingLabeling, LabelingCompleted, LabelingComplete},
	{LabelingComplete, PackedTrigger, Packed},
	{Packed, ReturnedToHQ, ReturningToHQ},
	{QCFail, DisputeWindowOpened, QCFailPendingDispute},
	{QCFailPendingDispute, DisputeFiled, DisputedAwaitingReinspection},
	{QCFailPendingDispute, DisputeWindowExpired, TotalFail},
	{DisputedAwaitingReinspection, ReinspectionConfirmedFail, TotalFail},
	{DisputedAwaitingReinspection, ReinspectionPassed, DisputeUpheld},
	{DisputeUpheld, MovedToLabeling, AwaitingLabeling},
	{ReturningToHQ, ReceivedAtHQ, AtHQ},
	{AtHQ, ShippedTrigger, Shipped},
	{Shipped, DeliveredTrigger, Delivered},
	{Delivered, Closed, Complete},

	// Reassignments hand the order to another actor without moving it.
	{Claimed, TailorReassigned, Claimed},
	{Dispatching, TailorReassigned, Dispatching},
	{QCInProgress, InspectorReassigned, QCInProgress},
}

var automaticTriggers = map[Trigger]bool{
	DisputeWindowOpened:  true,
	DisputeWindowExpired: true,
}

// Triggers yields every trigger of the transition table once, in table order.
func Triggers() iter.Seq[Trigger] {
	return func(yield func(Trigger) bool) {
		seen := make(map[Trigger]bool, len(transitionTable))
		for _, e := range transitionTable {
			if seen[e.trigger] {
				continue
			}
			seen[e.trigger] = true
			if !yield(e.trigger) {
				return
			}
		}
	}
}

func ParseTrigger(raw string) (Trigger, error) {
	t := Trigger(raw)
	for known := range Triggers() {
		if known == t {
			return t, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("trigger", fmt.Errorf("%q is not a known trigger", raw))
}

// IsAutomatic reports whether the trigger is time-driven and applied by the
// service itself rather than by an external caller.
func (t Trigger) IsAutomatic() bool {
	return automaticTriggers[t]
}

func (t Trigger) String() string {
	return string(t)
}

// destinations returns every state the trigger can lead to.
func (t Trigger) destinations() []State {
	var out []State
	for _, e := range transitionTable {
		if e.trigger == t {
			out = append(out, e.to)
		}
	}
	return out
}
