package order

import (
	"errors"
	"fmt"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
)

var (
	ErrUnknownState              = errors.New("unknown state")
	ErrIllegalTransition         = errors.New("illegal transition")
	ErrAlreadyClaimed            = errors.New("order already claimed")
	ErrDisputeWindowExpired      = errors.New("dispute window expired")
	ErrAlreadyReinspected        = errors.New("order already reinspected")
	ErrMeasurementReviewRequired = errors.New("measurement review required")
	ErrInvalidPayload            = errors.New("invalid payload")
)

type UnknownStateError struct {
	State State
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("%s: %q is not registered", ErrUnknownState, string(e.State))
}

func (e *UnknownStateError) Unwrap() error {
	return ErrUnknownState
}

// IllegalTransitionError is returned when trigger is not accepted from the
// order's current state, including any trigger against a terminal state.
type IllegalTransitionError struct {
	Current State
	Trigger Trigger
}

func (e *IllegalTransitionError) Error() string {
	if e.Current.IsTerminal() {
		return fmt.Sprintf("%s: %s is terminal, %s rejected", ErrIllegalTransition, e.Current.describe(), e.Trigger)
	}
	return fmt.Sprintf("%s: %s does not accept %s", ErrIllegalTransition, e.Current.describe(), e.Trigger)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// AlreadyClaimedError, DisputeWindowExpiredError and AlreadyReinspectedError
// refine an illegal transition and also match ErrIllegalTransition.
type AlreadyClaimedError struct {
	OrderID   kernel.OrderID
	Current   State
	ClaimedBy kernel.ActorID
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("%s: %s is held by %s", ErrAlreadyClaimed, e.OrderID, e.ClaimedBy)
}

func (e *AlreadyClaimedError) Unwrap() []error {
	return []error{ErrAlreadyClaimed, ErrIllegalTransition}
}

type DisputeWindowExpiredError struct {
	OrderID  kernel.OrderID
	Deadline time.Time
}

func (e *DisputeWindowExpiredError) Error() string {
	return fmt.Sprintf("%s: %s closed at %s", ErrDisputeWindowExpired, e.OrderID, e.Deadline.Format(time.RFC3339))
}

func (e *DisputeWindowExpiredError) Unwrap() []error {
	return []error{ErrDisputeWindowExpired, ErrIllegalTransition}
}

type AlreadyReinspectedError struct {
	OrderID kernel.OrderID
	Verdict ReinspectionVerdict
}

func (e *AlreadyReinspectedError) Error() string {
	return fmt.Sprintf("%s: %s already has verdict %s", ErrAlreadyReinspected, e.OrderID, e.Verdict)
}

func (e *AlreadyReinspectedError) Unwrap() []error {
	return []error{ErrAlreadyReinspected, ErrIllegalTransition}
}

// MeasurementReviewRequiredError blocks processing of a scan whose
// measurements were flagged until the flags are acknowledged.
type MeasurementReviewRequiredError struct {
	OrderID kernel.OrderID
	Flags   []MeasurementFlag
}

func (e *MeasurementReviewRequiredError) Error() string {
	return fmt.Sprintf("%s: %s has %d flagged measurements", ErrMeasurementReviewRequired, e.OrderID, len(e.Flags))
}

func (e *MeasurementReviewRequiredError) Unwrap() error {
	return ErrMeasurementReviewRequired
}

type InvalidPayloadError struct {
	Trigger Trigger
	Cause   error
}

func (e *InvalidPayloadError) Error() string {
	msg := ErrInvalidPayload.Error()
	if e.Trigger != "" {
		msg += " for " + string(e.Trigger)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *InvalidPayloadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidPayload}
	}
	return []error{ErrInvalidPayload, e.Cause}
}

// ErrorKind names the domain error class of err for API responses and
// metrics labels. It returns "" for errors outside the lifecycle domain.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownState):
		return "unknown_state"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrDisputeWindowExpired):
		return "dispute_window_expired"
	case errors.Is(err, ErrAlreadyReinspected):
		return "already_reinspected"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, ErrMeasurementReviewRequired):
		return "measurement_review_required"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	default:
		return ""
	}
}

// CurrentState extracts the order state carried by a lifecycle error.
func CurrentState(err error) (State, bool) {
	var illegal *IllegalTransitionError
	if errors.As(err, &illegal) {
		return illegal.Current, true
	}
	var claimed *AlreadyClaimedError
	if errors.As(err, &claimed) {
		return claimed.Current, true
	}
	if errors.Is(err, ErrDisputeWindowExpired) {
		return TotalFail, true
	}
	return "", false
}
