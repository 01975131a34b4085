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

func newDisputeFlow(clock kernel.Clock) *services.DisputeFlow {
	return services.NewDisputeFlow(clock, services.NewTransitionService(clock))
}

func TestDisputeFlow_FileDispute(t *testing.T) {
	t.Run("inside the window", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.QCFail))
		flow := newDisputeFlow(clockAt(2 * time.Hour))

		disputed, err := flow.FileDispute(t.Context(), repo, defaultID, tailor, "measurements were followed")

		require.NoError(t, err)
		assert.Equal(t, order.DisputedAwaitingReinspection, disputed.State())
		require.NotNil(t, disputed.Dispute())
		assert.Equal(t, ordertest.DefaultTime.Add(order.DisputeWindow), disputed.Dispute().Deadline)
	})

	t.Run("at the deadline", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.QCFailPendingDispute))
		flow := newDisputeFlow(clockAt(order.DisputeWindow))

		resolved, err := flow.FileDispute(t.Context(), repo, defaultID, tailor, "too late")

		var expired *order.DisputeWindowExpiredError
		require.ErrorAs(t, err, &expired)
		assert.Equal(t, ordertest.DefaultTime.Add(order.DisputeWindow), expired.Deadline)
		require.NotNil(t, resolved)
		assert.Equal(t, order.TotalFail, resolved.State())
	})

	t.Run("only the producing tailor may dispute", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.QCFailPendingDispute))
		flow := newDisputeFlow(clockAt(time.Hour))

		_, err := flow.FileDispute(t.Context(), repo, defaultID, kernel.MustNewActorID("tailor_other"), "not mine")

		assert.ErrorIs(t, err, order.ErrInvalidPayload)
	})

	t.Run("reason is required", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.QCFailPendingDispute))
		flow := newDisputeFlow(clockAt(time.Hour))

		_, err := flow.FileDispute(t.Context(), repo, defaultID, tailor, "  ")

		assert.ErrorIs(t, err, order.ErrInvalidPayload)
	})
}

func TestDisputeFlow_Reinspect(t *testing.T) {
	t.Run("confirmed failure withholds payout", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.DisputedAwaitingReinspection))
		flow := newDisputeFlow(clockAt(time.Hour))

		next, err := flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionConfirmFail, inspector)

		require.NoError(t, err)
		assert.Equal(t, order.TotalFail, next.State())
		assert.False(t, next.PayoutEligible())
		assert.Equal(t, order.PayoutWithheld, next.Payout().Status)
	})

	t.Run("pass upholds the dispute", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.DisputedAwaitingReinspection))
		flow := newDisputeFlow(clockAt(time.Hour))

		next, err := flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionPass, inspector)

		require.NoError(t, err)
		assert.Equal(t, order.DisputeUpheld, next.State())
		assert.True(t, next.PayoutEligible())
	})

	t.Run("second verdict is rejected", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.DisputedAwaitingReinspection))
		flow := newDisputeFlow(clockAt(time.Hour))
		_, err := flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionPass, inspector)
		require.NoError(t, err)

		_, err = flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionConfirmFail, inspector)

		var again *order.AlreadyReinspectedError
		require.ErrorAs(t, err, &again)
		assert.Equal(t, order.ReinspectionPass, again.Verdict)
	})

	t.Run("identical replay is accepted", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.DisputedAwaitingReinspection))
		flow := newDisputeFlow(clockAt(time.Hour))
		_, err := flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionPass, inspector)
		require.NoError(t, err)

		next, err := flow.Reinspect(t.Context(), repo, defaultID, order.ReinspectionPass, inspector)

		require.NoError(t, err)
		assert.Equal(t, order.DisputeUpheld, next.State())
	})
}

func TestDisputeFlow_Sweep(t *testing.T) {
	fresh := ordertest.New(order.QCFail, ordertest.WithID(orderID(1)))
	lapsed := ordertest.New(order.QCFailPendingDispute, ordertest.WithID(orderID(2)), ordertest.WithEnteredAt(ordertest.DefaultTime.Add(-30*time.Hour)))
	open := ordertest.New(order.QCFailPendingDispute, ordertest.WithID(orderID(3)))
	repo := seed(t, fresh, lapsed, open)
	flow := newDisputeFlow(clockAt(time.Hour))

	resolved, err := flow.Sweep(t.Context(), repo)

	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, order.QCFailPendingDispute, resolved[0].State())
	assert.Equal(t, order.TotalFail, resolved[1].State())

	stored, err := repo.Get(t.Context(), open.ID())
	require.NoError(t, err)
	assert.Equal(t, order.QCFailPendingDispute, stored.State())
}
