package queries_test

import (
	"testing"
	"time"

	"patternfactory/internal/adapters/out/memory"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"

	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, orders ...*order.Order) *memory.OrderRepository {
	t.Helper()
	repo := memory.NewStore().Repository()
	for _, o := range orders {
		require.NoError(t, repo.Add(t.Context(), o))
	}
	return repo
}

func clockAt(offset time.Duration) kernel.Clock {
	return kernel.FixedClock(ordertest.DefaultTime.Add(offset))
}
