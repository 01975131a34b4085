package queries

import (
	"context"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
)

type GetJobBoardQueryHandler struct {
	reader ports.OrderReader
	board  *services.JobBoard
	clock  kernel.Clock
}

func NewGetJobBoardQueryHandler(reader ports.OrderReader, board *services.JobBoard, clock kernel.Clock) GetJobBoardQueryHandler {
	return GetJobBoardQueryHandler{reader: reader, board: board, clock: clock}
}

// Handle returns claimable orders, most urgent first and, within a
// priority, the longest waiting first.
func (h GetJobBoardQueryHandler) Handle(ctx context.Context, query GetJobBoardQuery) ([]GetJobBoardQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	available, err := h.reader.ListByState(ctx, order.AvailableForTailors)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	ranked := h.board.Rank(available, now)
	if len(ranked) > query.Limit() {
		ranked = ranked[:query.Limit()]
	}

	board := make([]GetJobBoardQueryResponse, 0, len(ranked))
	for _, o := range ranked {
		entry := GetJobBoardQueryResponse{Order: o}
		if status, ok := order.EvaluateSLA(o, now); ok {
			entry.Waiting = status
		}
		board = append(board, entry)
	}
	return board, nil
}
