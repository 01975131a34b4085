package services

import (
	"cmp"
	"slices"
	"time"

	"patternfactory/internal/core/domain/model/order"
)

// JobBoard orders claimable work for tailors.
type JobBoard struct{}

func NewJobBoard() *JobBoard {
	return &JobBoard{}
}

// Rank keeps the orders whose effective state at now is S08 and sorts them
// by priority, highest first, then by how long they have been waiting.
func (b *JobBoard) Rank(orders []*order.Order, now time.Time) []*order.Order {
	available := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		if order.EffectiveState(o, now) == order.AvailableForTailors {
			available = append(available, o)
		}
	}

	slices.SortStableFunc(available, func(a, b *order.Order) int {
		if c := cmp.Compare(b.Priority().Rank(), a.Priority().Rank()); c != 0 {
			return c
		}
		if c := a.StateEnteredAt().Compare(b.StateEnteredAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return available
}
