package services_test

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/domain/model/order/ordertest"
	"patternfactory/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestClaimCoordinator_Claim(t *testing.T) {
	t.Run("first claim wins", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.AvailableForTailors))
		coordinator := services.NewClaimCoordinator(clockAt(time.Minute))

		claimed, err := coordinator.Claim(t.Context(), repo, defaultID, tailor)

		require.NoError(t, err)
		assert.Equal(t, order.Claimed, claimed.State())
		assert.True(t, claimed.AssignedTailor().IsEqual(tailor))
	})

	t.Run("second tailor is told who holds it", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.Claimed))
		coordinator := services.NewClaimCoordinator(clockAt(time.Minute))

		_, err := coordinator.Claim(t.Context(), repo, defaultID, kernel.MustNewActorID("tailor_other"))

		var claimed *order.AlreadyClaimedError
		require.ErrorAs(t, err, &claimed)
		assert.True(t, claimed.ClaimedBy.IsEqual(tailor))
		assert.Equal(t, order.Claimed, claimed.Current)
	})

	t.Run("repeated claim by the holder succeeds", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.Claimed))
		coordinator := services.NewClaimCoordinator(clockAt(time.Minute))

		claimed, err := coordinator.Claim(t.Context(), repo, defaultID, tailor)

		require.NoError(t, err)
		assert.Equal(t, order.Claimed, claimed.State())
		assert.False(t, claimed.HasChanges())
	})

	t.Run("order not yet on the board", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.PatternCut))
		coordinator := services.NewClaimCoordinator(clockAt(time.Minute))

		_, err := coordinator.Claim(t.Context(), repo, defaultID, tailor)

		assert.ErrorIs(t, err, order.ErrIllegalTransition)
	})

	t.Run("concurrent claims have exactly one winner", func(t *testing.T) {
		repo := seed(t, ordertest.New(order.AvailableForTailors))
		coordinator := services.NewClaimCoordinator(clockAt(time.Minute))

		const contenders = 16
		var (
			winners atomic.Int32
			losers  atomic.Int32
		)
		var g errgroup.Group
		for i := range contenders {
			id := kernel.MustNewActorID(fmt.Sprintf("tailor_%02d", i))
			g.Go(func() error {
				_, err := coordinator.Claim(t.Context(), repo, defaultID, id)
				switch {
				case err == nil:
					winners.Add(1)
					return nil
				case errors.Is(err, order.ErrAlreadyClaimed):
					losers.Add(1)
					return nil
				default:
					return err
				}
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(1), winners.Load())
		assert.Equal(t, int32(contenders-1), losers.Load())

		history, err := repo.History(t.Context(), defaultID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}
