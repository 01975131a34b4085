package services_test

import (
	"context"
	"testing"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staleReadRepository serves a snapshot taken before a concurrent writer
// on the first Get, so the next Update loses the compare-and-swap.
type staleReadRepository struct {
	ports.OrderRepository
	stale *order.Order
}

func (r *staleReadRepository) Get(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	if r.stale != nil {
		stale := r.stale
		r.stale = nil
		return stale, nil
	}
	return r.OrderRepository.Get(ctx, id)
}

// raceAfter stores winner through svc, then runs loser against the snapshot
// read before the winner's write.
func raceAfter(
	t *testing.T,
	initial *order.Order,
	trigger order.Trigger,
	winner, loser order.Payload,
	actor kernel.ActorID,
) (got, stored *order.Order, lossErr error) {
	t.Helper()
	repo := seed(t, initial)
	svc := services.NewTransitionService(clockAt(time.Minute))

	before, err := repo.Get(t.Context(), defaultID)
	require.NoError(t, err)
	_, err = svc.Transition(t.Context(), repo, defaultID, trigger, winner, actor)
	require.NoError(t, err)

	stale := &staleReadRepository{OrderRepository: repo, stale: before}
	got, lossErr = svc.Transition(t.Context(), stale, defaultID, trigger, loser, actor)

	stored, err = repo.Get(t.Context(), defaultID)
	require.NoError(t, err)
	return got, stored, lossErr
}

func reinspection(t *testing.T, verdict order.ReinspectionVerdict, inspectorID string) order.ReinspectionResult {
	t.Helper()
	r, err := order.NewReinspectionResult(verdict, kernel.MustNewActorID(inspectorID))
	require.NoError(t, err)
	return r
}

func courierBooking(t *testing.T, courierID string) order.CourierBooking {
	t.Helper()
	b, err := order.NewCourierBooking(kernel.MustNewActorID(courierID))
	require.NoError(t, err)
	return b
}

func TestTransitionService_LostWrite(t *testing.T) {
	t.Run("reinspection by another inspector is already reinspected", func(t *testing.T) {
		got, stored, err := raceAfter(t, ordertest.New(order.DisputedAwaitingReinspection), order.ReinspectionPassed,
			reinspection(t, order.ReinspectionPass, "qc_002"), reinspection(t, order.ReinspectionPass, "qc_003"), inspector)

		assert.Nil(t, got)
		var already *order.AlreadyReinspectedError
		require.ErrorAs(t, err, &already)
		assert.Equal(t, order.ReinspectionPass, already.Verdict)
		assert.Equal(t, "qc_002", stored.Dispute().InspectorID.String())
	})

	t.Run("reinspection with the other verdict is already reinspected", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.DisputedAwaitingReinspection))
		svc := services.NewTransitionService(clockAt(time.Minute))
		before, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		_, err = svc.Transition(t.Context(), repo, defaultID, order.ReinspectionPassed,
			reinspection(t, order.ReinspectionPass, "qc_002"), inspector)
		require.NoError(t, err)

		stale := &staleReadRepository{OrderRepository: repo, stale: before}
		got, err := svc.Transition(t.Context(), stale, defaultID, order.ReinspectionConfirmedFail,
			reinspection(t, order.ReinspectionConfirmFail, "qc_003"), inspector)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, order.ErrAlreadyReinspected)
		stored, err := repo.Get(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Equal(t, order.DisputeUpheld, stored.State())
	})

	t.Run("identical reinspection is a replay", func(t *testing.T) {
		same := reinspection(t, order.ReinspectionPass, "qc_002")
		got, stored, err := raceAfter(t, ordertest.New(order.DisputedAwaitingReinspection), order.ReinspectionPassed,
			same, same, inspector)

		require.NoError(t, err)
		assert.Equal(t, order.DisputeUpheld, got.State())
		assert.False(t, got.HasChanges())
		assert.Equal(t, stored.Version(), got.Version())
	})

	t.Run("courier booked by another courier is rejected", func(t *testing.T) {
		got, stored, err := raceAfter(t, ordertest.New(order.Claimed), order.CourierBooked,
			courierBooking(t, "courier_A"), courierBooking(t, "courier_B"), kernel.SystemActor)

		assert.Nil(t, got)
		var illegal *order.IllegalTransitionError
		require.ErrorAs(t, err, &illegal)
		assert.Equal(t, order.Dispatching, illegal.Current)
		assert.Equal(t, "courier_A", stored.Courier().String())
	})

	t.Run("same courier booking is a replay", func(t *testing.T) {
		got, _, err := raceAfter(t, ordertest.New(order.Claimed), order.CourierBooked,
			courierBooking(t, "courier_A"), courierBooking(t, "courier_A"), kernel.SystemActor)

		require.NoError(t, err)
		assert.Equal(t, "courier_A", got.Courier().String())
	})
}
