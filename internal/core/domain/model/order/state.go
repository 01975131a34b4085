package order

import (
	"fmt"
	"iter"
	"slices"
)

// State is the registered code of a lifecycle state, e.g. "S08" or "S16a".
type State string

const (
	Draft                        State = "S01"
	Paid                         State = "S02"
	ScanReceived                 State = "S03"
	Processing                   State = "S04"
	PatternReady                 State = "S05"
	Cutting                      State = "S06"
	PatternCut                   State = "S07"
	AvailableForTailors          State = "S08"
	Claimed                      State = "S09"
	Dispatching                  State = "S10"
	InTransitToTailor            State = "S11"
	WithTailor                   State = "S12"
	InProduction                 State = "S13"
	ReadyForQC                   State = "S14"
	QCInProgress                 State = "S15"
	QCPass                       State = "S16"
	AwaitingLabeling             State = "S16a"
	LabelingComplete             State = "S16b"
	Packed                       State = "S16c"
	QCFail                       State = "S17"
	QCFailPendingDispute         State = "S17a"
	DisputedAwaitingReinspection State = "S17b"
	TotalFail                    State = "S17d"
	DisputeUpheld                State = "S17e"
	ReturningToHQ                State = "S18"
	AtHQ                         State = "S19"
	Shipped                      State = "S20"
	Delivered                    State = "S21"
	Complete                     State = "S22"
)

// StateInfo describes one registered state.
type StateInfo struct {
	Code     State
	Name     string
	Terminal bool
}

// registry lists every state in lifecycle order. The position of a state is
// its rank, used to reason about "reached at least" conditions.
var registry = []StateInfo{
	{Code: Draft, Name: "DRAFT"},
	{Code: Paid, Name: "PAID"},
	{Code: ScanReceived, Name: "SCAN_RECEIVED"},
	{Code: Processing, Name: "PROCESSING"},
	{Code: PatternReady, Name: "PATTERN_READY"},
	{Code: Cutting, Name: "CUTTING"},
	{Code: PatternCut, Name: "PATTERN_CUT"},
	{Code: AvailableForTailors, Name: "AVAILABLE_FOR_TAILORS"},
	{Code: Claimed, Name: "CLAIMED"},
	{Code: Dispatching, Name: "DISPATCHING"},
	{Code: InTransitToTailor, Name: "IN_TRANSIT_TO_TAILOR"},
	{Code: WithTailor, Name: "WITH_TAILOR"},
	{Code: InProduction, Name: "IN_PRODUCTION"},
	{Code: ReadyForQC, Name: "READY_FOR_QC"},
	{Code: QCInProgress, Name: "QC_IN_PROGRESS"},
	{Code: QCPass, Name: "QC_PASS"},
	{Code: AwaitingLabeling, Name: "AWAITING_LABELING"},
	{Code: LabelingComplete, Name: "LABELING_COMPLETE"},
	{Code: Packed, Name: "PACKED"},
	{Code: QCFail, Name: "QC_FAIL"},
	{Code: QCFailPendingDispute, Name: "QC_FAIL_PENDING_DISPUTE"},
	{Code: DisputedAwaitingReinspection, Name: "DISPUTED_AWAITING_REINSPECTION"},
	{Code: TotalFail, Name: "TOTAL_FAIL", Terminal: true},
	{Code: DisputeUpheld, Name: "DISPUTE_UPHELD"},
	{Code: ReturningToHQ, Name: "RETURNING_TO_HQ"},
	{Code: AtHQ, Name: "AT_HQ"},
	{Code: Shipped, Name: "SHIPPED"},
	{Code: Delivered, Name: "DELIVERED"},
	{Code: Complete, Name: "COMPLETE", Terminal: true},
}

var stateRanks = func() map[State]int {
	ranks := make(map[State]int, len(registry))
	for i, info := range registry {
		ranks[info.Code] = i
	}
	return ranks
}()

// States yields every registered state in lifecycle order. The sequence is
// finite and can be ranged over any number of times.
func States() iter.Seq[StateInfo] {
	return func(yield func(StateInfo) bool) {
		for _, info := range registry {
			if !yield(info) {
				return
			}
		}
	}
}

// ParseState maps a wire code onto a registered State.
func ParseState(code string) (State, error) {
	s := State(code)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Info returns the registry entry for s.
func (s State) Info() (StateInfo, error) {
	rank, ok := stateRanks[s]
	if !ok {
		return StateInfo{}, &UnknownStateError{State: s}
	}
	return registry[rank], nil
}

func (s State) Validate() error {
	_, err := s.Info()
	return err
}

// Name returns the upper-case state name, or "UNKNOWN" for unregistered codes.
func (s State) Name() string {
	info, err := s.Info()
	if err != nil {
		return "UNKNOWN"
	}
	return info.Name
}

func (s State) String() string {
	return string(s)
}

func (s State) IsTerminal() bool {
	info, err := s.Info()
	return err == nil && info.Terminal
}

// IsTerminal reports whether state accepts no further triggers.
func IsTerminal(state State) bool {
	return state.IsTerminal()
}

// InDisputeFamily reports whether s belongs to the QC failure sub-flow.
func (s State) InDisputeFamily() bool {
	return slices.Contains([]State{QCFail, QCFailPendingDispute, DisputedAwaitingReinspection, TotalFail, DisputeUpheld}, s)
}

// HasDisputeDeadline reports whether an order in s must carry a dispute deadline.
func (s State) HasDisputeDeadline() bool {
	return s == QCFailPendingDispute || s == DisputedAwaitingReinspection
}

// Reached reports whether s is at or beyond milestone in lifecycle order.
func (s State) Reached(milestone State) bool {
	return stateRanks[s] >= stateRanks[milestone]
}

// TransitionsFrom returns the triggers accepted in state and their
// destinations. Terminal states yield an empty map.
func TransitionsFrom(state State) (map[Trigger]State, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	out := make(map[Trigger]State)
	for _, e := range transitionTable {
		if e.from == state {
			out[e.trigger] = e.to
		}
	}
	return out, nil
}

func (s State) describe() string {
	return fmt.Sprintf("%s %s", s, s.Name())
}
