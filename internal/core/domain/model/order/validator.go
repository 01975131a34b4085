package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"patternfactory/internal/core/domain/model/kernel"

	"github.com/looplab/fsm"
)

// lifecycleEvents is the transition table in the shape looplab/fsm expects:
// one event description per (trigger, destination) pair.
var lifecycleEvents = func() fsm.Events {
	type key struct {
		trigger Trigger
		to      State
	}
	var order []key
	sources := make(map[key][]string)
	for _, e := range transitionTable {
		k := key{e.trigger, e.to}
		if _, ok := sources[k]; !ok {
			order = append(order, k)
		}
		sources[k] = append(sources[k], string(e.from))
	}

	events := make(fsm.Events, 0, len(order))
	for _, k := range order {
		events = append(events, fsm.EventDesc{Name: string(k.trigger), Src: sources[k], Dst: string(k.to)})
	}
	return events
}()

// Validate returns the state trigger leads to from current. Terminal states
// reject every trigger.
func Validate(current State, trigger Trigger) (State, error) {
	if err := current.Validate(); err != nil {
		return "", err
	}
	if current.IsTerminal() {
		return "", &IllegalTransitionError{Current: current, Trigger: trigger}
	}

	// A machine per call keeps validation free of shared mutable state.
	machine := fsm.NewFSM(string(current), lifecycleEvents, fsm.Callbacks{})
	if !machine.Can(string(trigger)) {
		return "", &IllegalTransitionError{Current: current, Trigger: trigger}
	}
	if err := machine.Event(context.Background(), string(trigger)); err != nil {
		// Reassignments are self-transitions, which fsm reports as no-ops.
		var same fsm.NoTransitionError
		if errors.As(err, &same) && same.Err == nil {
			return current, nil
		}
		return "", &IllegalTransitionError{Current: current, Trigger: trigger}
	}
	return State(machine.Current()), nil
}

// Apply validates trigger against the order's effective state at now and
// returns the resulting snapshot. The input order is never modified.
//
// applied is false when the call was a replay of the trigger that produced
// the current state; the returned order is then the effective order and no
// error is reported.
func Apply(o *Order, trigger Trigger, payload Payload, actor kernel.ActorID, now time.Time) (next *Order, applied bool, err error) {
	if err = o.Validate(); err != nil {
		return nil, false, err
	}

	current := Resolve(o, now)

	if trigger.IsAutomatic() {
		if current.lastTrigger == trigger {
			return current, false, nil
		}
		return nil, false, &IllegalTransitionError{Current: current.state, Trigger: trigger}
	}

	p, err := checkPayload(trigger, payload)
	if err != nil {
		return nil, false, err
	}

	replay, err := current.checkOwnership(trigger, p)
	if err != nil {
		return nil, false, err
	}
	if replay {
		return current, false, nil
	}

	to, err := Validate(current.state, trigger)
	if err != nil {
		if current.isReplay(trigger, p) {
			return current, false, nil
		}
		return nil, false, err
	}

	n := current.clone()
	if err = n.applyEffects(trigger, p, now); err != nil {
		return nil, false, err
	}
	n.enter(to, trigger, actor, now)
	return n, true, nil
}

// checkOwnership reports the errors that depend on who already acted on the
// order rather than on its state alone.
func (o *Order) checkOwnership(trigger Trigger, p Payload) (replay bool, err error) {
	switch trigger {
	case ClaimedByTailor:
		claim := p.(ClaimRequest)
		if o.state == AvailableForTailors || o.tailorID.IsZero() {
			return false, nil
		}
		if !o.tailorID.IsEqual(claim.TailorID()) {
			return false, &AlreadyClaimedError{OrderID: o.id, Current: o.state, ClaimedBy: o.tailorID}
		}
		return o.state == Claimed, nil

	case DisputeFiled:
		if o.state == TotalFail && o.dispute != nil && o.dispute.Expired {
			return false, &DisputeWindowExpiredError{OrderID: o.id, Deadline: o.stateEnteredAt}
		}
		if o.state == QCFailPendingDispute && !o.tailorID.IsEqual(p.(DisputeSubmission).TailorID()) {
			return false, &InvalidPayloadError{Trigger: trigger,
				Cause: fmt.Errorf("tailor %s did not produce order %s", p.(DisputeSubmission).TailorID(), o.id)}
		}

	case TailorReassigned:
		return o.checkReassignment(trigger, o.tailorID, p.(Reassignment))

	case InspectorReassigned:
		return o.checkReassignment(trigger, o.inspectorID, p.(Reassignment))

	case ReinspectionConfirmedFail, ReinspectionPassed:
		if o.dispute == nil || !o.dispute.IsReinspected() {
			return false, nil
		}
		r := p.(ReinspectionResult)
		if o.lastTrigger == trigger && o.dispute.Verdict == r.Verdict() && o.dispute.InspectorID.IsEqual(r.InspectorID()) {
			return true, nil
		}
		return false, &AlreadyReinspectedError{OrderID: o.id, Verdict: o.dispute.Verdict}
	}
	return false, nil
}

// checkReassignment treats a hand-over to the current holder as a replay and
// rejects one whose expected previous holder does not hold the order.
func (o *Order) checkReassignment(trigger Trigger, holder kernel.ActorID, r Reassignment) (replay bool, err error) {
	if _, err := Validate(o.state, trigger); err != nil {
		return false, nil
	}
	if holder.IsEqual(r.To()) {
		return true, nil
	}
	if !r.From().IsZero() && !holder.IsEqual(r.From()) {
		return false, &InvalidPayloadError{Trigger: trigger,
			Cause: fmt.Errorf("%s does not hold order %s, %s does", r.From(), o.id, holder)}
	}
	return false, nil
}

// isReplay reports whether trigger with p is what produced the current state.
func (o *Order) isReplay(trigger Trigger, p Payload) bool {
	if o.lastTrigger != trigger {
		return false
	}
	switch v := p.(type) {
	case ScanResult:
		return o.measurements.Equal(v.Measurements())
	case CourierBooking:
		return o.courierID.IsEqual(v.CourierID())
	case InspectionStart:
		return o.inspectorID.IsEqual(v.InspectorID())
	case QCVerdict:
		return o.qc != nil && o.qc.Verdict == v.Verdict() && o.qc.InspectorID.IsEqual(v.InspectorID())
	case DisputeSubmission:
		return o.dispute != nil && o.dispute.TailorID.IsEqual(v.TailorID()) && o.dispute.Reason == v.Reason()
	case ShipmentDetails:
		return o.shipment != nil && *o.shipment == Shipment{Carrier: v.Carrier(), TrackingNumber: v.TrackingNumber()}
	default:
		return true
	}
}

// applyEffects sets the trigger-specific fields on a clone before it enters
// the destination state.
func (o *Order) applyEffects(trigger Trigger, p Payload, now time.Time) error {
	switch trigger {
	case ScanReceivedTrigger:
		scan := p.(ScanResult)
		o.measurements = scan.Measurements()
		o.measurementFlags = scan.Measurements().Flags()

	case ProcessingStarted:
		if len(o.measurementFlags) > 0 && !p.(ProcessingStart).AcknowledgesFlags() {
			return &MeasurementReviewRequiredError{OrderID: o.id, Flags: o.MeasurementFlags()}
		}

	case PatternReadyTrigger:
		o.files = readyFiles()

	case ClaimedByTailor:
		o.tailorID = p.(ClaimRequest).TailorID()

	case CourierBooked:
		o.courierID = p.(CourierBooking).CourierID()

	case QCStarted:
		o.inspectorID = p.(InspectionStart).InspectorID()

	case QCPassed, QCFailed:
		v := p.(QCVerdict)
		if v.Verdict().Trigger() != trigger {
			return &InvalidPayloadError{Trigger: trigger, Cause: fmt.Errorf("verdict %s does not lead to %s", v.Verdict(), trigger)}
		}
		o.qc = &QCResult{
			Verdict:     v.Verdict(),
			Category:    v.Category(),
			InspectorID: v.InspectorID(),
			FabricCost:  v.FabricCost(),
			LaborFee:    v.LaborFee(),
			RecordedAt:  now,
		}
		if trigger == QCPassed {
			payout := newPayout(*o.qc, now)
			o.payout = &payout
		} else {
			o.dispute = &Dispute{OpenedAt: now}
		}

	case DisputeFiled:
		d := p.(DisputeSubmission)
		o.dispute.FiledAt = now
		o.dispute.TailorID = d.TailorID()
		o.dispute.Reason = d.Reason()

	case ReinspectionConfirmedFail, ReinspectionPassed:
		r := p.(ReinspectionResult)
		if r.Verdict().Trigger() != trigger {
			return &InvalidPayloadError{Trigger: trigger, Cause: fmt.Errorf("verdict %s does not lead to %s", r.Verdict(), trigger)}
		}
		o.dispute.Verdict = r.Verdict()
		o.dispute.InspectorID = r.InspectorID()
		o.dispute.ReinspectedAt = now
		o.dispute.Deadline = time.Time{}
		if trigger == ReinspectionConfirmedFail {
			o.payoutEligible = false
			payout := withheldPayout(o.qc)
			o.payout = &payout
		} else if o.qc != nil {
			payout := newPayout(*o.qc, now)
			o.payout = &payout
		}

	case MovedToLabeling:
		o.dispute = nil

	case TailorReassigned:
		o.tailorID = p.(Reassignment).To()

	case InspectorReassigned:
		o.inspectorID = p.(Reassignment).To()

	case ShippedTrigger:
		s := p.(ShipmentDetails)
		o.shipment = &Shipment{Carrier: s.Carrier(), TrackingNumber: s.TrackingNumber()}
	}
	return nil
}
