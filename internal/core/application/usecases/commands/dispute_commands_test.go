package commands_test

import (
	"testing"
	"time"

	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disputeFlow(clock kernel.Clock) *services.DisputeFlow {
	return services.NewDisputeFlow(clock, services.NewTransitionService(clock))
}

func TestFileDisputeCommandHandler_Handle(t *testing.T) {
	t.Run("inside the window", func(t *testing.T) {
		f := newFixture(t, ordertest.New(order.QCFail))
		h := commands.NewFileDisputeCommandHandler(f.executor, disputeFlow(clockAt(2*time.Hour)))

		cmd, err := commands.NewFileDisputeCommand(ordertest.DefaultOrderID, ordertest.DefaultTailor, "seam allowance matches pattern")
		require.NoError(t, err)

		disputed, err := h.Handle(t.Context(), cmd)
		require.NoError(t, err)
		assert.Equal(t, order.DisputedAwaitingReinspection, disputed.State())
		assert.Equal(t,
			[]order.Trigger{order.DisputeWindowOpened, order.DisputeFiled},
			f.published.triggers(),
		)
	})

	t.Run("after the window closed", func(t *testing.T) {
		f := newFixture(t, ordertest.New(order.QCFailPendingDispute))
		h := commands.NewFileDisputeCommandHandler(f.executor, disputeFlow(clockAt(order.DisputeWindow)))

		cmd, err := commands.NewFileDisputeCommand(ordertest.DefaultOrderID, ordertest.DefaultTailor, "late")
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), cmd)
		var expired *order.DisputeWindowExpiredError
		require.ErrorAs(t, err, &expired)

		stored := f.stored(t, ordertest.DefaultOrderID)
		assert.Equal(t, order.TotalFail, stored.State())
		assert.False(t, stored.PayoutEligible())
		assert.Equal(t, []order.Trigger{order.DisputeWindowExpired}, f.published.triggers())
	})

	t.Run("blank reason", func(t *testing.T) {
		f := newFixture(t, ordertest.New(order.QCFailPendingDispute))
		h := commands.NewFileDisputeCommandHandler(f.executor, disputeFlow(clockAt(time.Hour)))

		cmd, err := commands.NewFileDisputeCommand(ordertest.DefaultOrderID, ordertest.DefaultTailor, " ")
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), cmd)
		assert.ErrorIs(t, err, order.ErrInvalidPayload)
		assert.Empty(t, f.published.triggers())
	})
}

func TestReinspectOrderCommandHandler_Handle(t *testing.T) {
	f := newFixture(t, ordertest.New(order.DisputedAwaitingReinspection))
	h := commands.NewReinspectOrderCommandHandler(f.executor, disputeFlow(clockAt(time.Hour)))

	cmd, err := commands.NewReinspectOrderCommand(ordertest.DefaultOrderID, "PASS", "insp_9")
	require.NoError(t, err)

	upheld, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, order.DisputeUpheld, upheld.State())
	assert.True(t, upheld.PayoutEligible())

	t.Run("second verdict", func(t *testing.T) {
		other, err := commands.NewReinspectOrderCommand(ordertest.DefaultOrderID, "CONFIRM_FAIL", "insp_9")
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), other)
		assert.ErrorIs(t, err, order.ErrAlreadyReinspected)
	})

	t.Run("unknown verdict", func(t *testing.T) {
		_, err := commands.NewReinspectOrderCommand(ordertest.DefaultOrderID, "MAYBE", "insp_9")
		assert.Error(t, err)
	})
}

func TestSweepDisputeWindowsCommandHandler_Handle(t *testing.T) {
	fresh := ordertest.New(order.QCFail, ordertest.WithID("SDS-20260101-0001-A"), ordertest.WithEnteredAt(ordertest.DefaultTime.Add(20*time.Hour)))
	lapsed := ordertest.New(order.QCFailPendingDispute, ordertest.WithID("SDS-20260101-0002-A"))
	untouched := ordertest.New(order.InProduction, ordertest.WithID("SDS-20260101-0003-A"))
	f := newFixture(t, fresh, lapsed, untouched)

	h := commands.NewSweepDisputeWindowsCommandHandler(f.executor, disputeFlow(clockAt(25*time.Hour)))
	resolved, err := h.Handle(t.Context(), commands.NewSweepDisputeWindowsCommand())
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, order.QCFailPendingDispute, f.stored(t, "SDS-20260101-0001-A").State())
	assert.Equal(t, order.TotalFail, f.stored(t, "SDS-20260101-0002-A").State())
	assert.Equal(t, order.InProduction, f.stored(t, "SDS-20260101-0003-A").State())
	assert.ElementsMatch(t,
		[]order.Trigger{order.DisputeWindowOpened, order.DisputeWindowExpired},
		f.published.triggers(),
	)

	t.Run("nothing left to sweep", func(t *testing.T) {
		again, err := h.Handle(t.Context(), commands.NewSweepDisputeWindowsCommand())
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("zero value", func(t *testing.T) {
		_, err := h.Handle(t.Context(), commands.SweepDisputeWindowsCommand{})
		assert.ErrorIs(t, err, commands.ErrSweepDisputeWindowsCommandIsNotConstructed)
	})
}
