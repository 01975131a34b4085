package services_test

import (
	"testing"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionService_Transition(t *testing.T) {
	t.Run("applies and stores the trigger", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.PatternCut))
		svc := services.NewTransitionService(clockAt(time.Minute))

		next, err := svc.Transition(t.Context(), repo, defaultID, order.MadeAvailableForTailors, order.NoPayload{}, kernel.SystemActor)

		require.NoError(t, err)
		assert.Equal(t, order.AvailableForTailors, next.State())
		require.Len(t, next.Changes(), 1)

		stored, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Equal(t, order.AvailableForTailors, stored.State())
		assert.Equal(t, next.Persisted().Version(), stored.Version())
	})

	t.Run("replay of the last trigger writes nothing", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.AvailableForTailors))
		before, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		svc := services.NewTransitionService(clockAt(time.Minute))

		next, err := svc.Transition(t.Context(), repo, defaultID, order.MadeAvailableForTailors, order.NoPayload{}, kernel.SystemActor)

		require.NoError(t, err)
		assert.False(t, next.HasChanges())
		after, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Equal(t, before.Version(), after.Version())
	})

	t.Run("illegal trigger leaves the order untouched", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.Draft))
		svc := services.NewTransitionService(clockAt(time.Minute))

		next, err := svc.Transition(t.Context(), repo, defaultID, order.PatternReadyTrigger, order.NoPayload{}, kernel.SystemActor)

		assert.Nil(t, next)
		assert.ErrorIs(t, err, order.ErrIllegalTransition)
		stored, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Equal(t, order.Draft, stored.State())
	})

	t.Run("stores the lazy resolution even when the trigger is rejected", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.QCFail))
		svc := services.NewTransitionService(clockAt(25 * time.Hour))
		submission, err := order.NewDisputeSubmission(tailor, "pattern mismatch")
		require.NoError(t, err)

		next, err := svc.Transition(t.Context(), repo, defaultID, order.DisputeFiled, submission, tailor)

		assert.ErrorIs(t, err, order.ErrDisputeWindowExpired)
		require.NotNil(t, next)
		assert.Equal(t, order.TotalFail, next.State())

		stored, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Equal(t, order.TotalFail, stored.State())
		assert.False(t, stored.PayoutEligible())

		history, err := repo.History(t.Context(), defaultID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, order.DisputeWindowOpened, history[0].Trigger)
		assert.Equal(t, order.DisputeWindowExpired, history[1].Trigger)
	})

	t.Run("unknown order", func(t *testing.T) {
		repo := seed(t)
		svc := services.NewTransitionService(clockAt(0))

		_, err := svc.Transition(t.Context(), repo, defaultID, order.PaymentReceived, order.NoPayload{}, kernel.SystemActor)

		assert.Error(t, err)
	})
}
