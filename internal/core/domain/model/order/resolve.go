package order

import (
	"time"

	"patternfactory/internal/core/domain/model/kernel"
)

// DisputeWindow is how long a tailor may dispute a QC failure.
const DisputeWindow = 24 * time.Hour

// Resolve returns the order as it stands at now once the time-driven steps
// of the QC failure sub-flow are taken into account:
//
//   - a QC failure opens the dispute window as soon as it is recorded
//     (S17 -> S17a, deadline = failure time + DisputeWindow);
//   - a window that closes without a dispute ends in TOTAL_FAIL with payout
//     withheld (S17a -> S17d, entered at the deadline).
//
// Orders with nothing to resolve are returned as is.
func Resolve(o *Order, now time.Time) *Order {
	if o.state != QCFail && !o.disputeWindowLapsed(now) {
		return o
	}

	n := o.clone()
	if n.state == QCFail {
		opened := n.stateEnteredAt
		if n.dispute == nil {
			n.dispute = &Dispute{OpenedAt: opened}
		}
		n.dispute.Deadline = opened.Add(DisputeWindow)
		n.enter(QCFailPendingDispute, DisputeWindowOpened, kernel.SystemActor, opened)
	}

	if n.disputeWindowLapsed(now) {
		deadline := n.dispute.Deadline
		n.dispute.Deadline = time.Time{}
		n.dispute.Expired = true
		n.payoutEligible = false
		payout := withheldPayout(n.qc)
		n.payout = &payout
		n.enter(TotalFail, DisputeWindowExpired, kernel.SystemActor, deadline)
	}
	return n
}

// EffectiveState is the state Resolve would report at now.
func EffectiveState(o *Order, now time.Time) State {
	return Resolve(o, now).State()
}

func (o *Order) disputeWindowLapsed(now time.Time) bool {
	return o.state == QCFailPendingDispute && o.dispute != nil && o.dispute.HasDeadline() && !now.Before(o.dispute.Deadline)
}
