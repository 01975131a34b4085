package services_test

import (
	"fmt"
	"testing"
	"time"

	"patternfactory/internal/adapters/out/memory"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"

	"github.com/stretchr/testify/require"
)

var (
	defaultID = kernel.MustParseOrderID(ordertest.DefaultOrderID)
	tailor    = kernel.MustNewActorID(ordertest.DefaultTailor)
	inspector = kernel.MustNewActorID(ordertest.DefaultInspector)
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

func orderID(n int) string {
	return fmt.Sprintf("SDS-20260101-%04d-A", n)
}
