package queries

import (
	"errors"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/errs"
	"patternfactory/internal/pkg/guard"
)

var ErrGetJobBoardQueryIsNotConstructed = errors.New(
	"GetJobBoardQuery must be created via NewGetJobBoardQuery constructor",
)

// MaxJobBoardLimit caps a single page of the board.
const MaxJobBoardLimit = 500

// GetJobBoardQuery lists the orders tailors may claim. A zero limit means
// MaxJobBoardLimit.
type GetJobBoardQuery struct {
	limit int
	guard guard.ConstructorGuard
}

func NewGetJobBoardQuery(limit int) (GetJobBoardQuery, error) {
	if limit < 0 || limit > MaxJobBoardLimit {
		return GetJobBoardQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxJobBoardLimit)
	}
	if limit == 0 {
		limit = MaxJobBoardLimit
	}
	return GetJobBoardQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetJobBoardQuery) Validate() error {
	return q.guard.Validate(ErrGetJobBoardQueryIsNotConstructed)
}

func (q GetJobBoardQuery) Limit() int {
	return q.limit
}

// GetJobBoardQueryResponse is one board entry.
type GetJobBoardQueryResponse struct {
	Order *order.Order
	// Waiting is how long the order has been on the board.
	Waiting order.SLAStatus
}
