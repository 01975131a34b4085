package commands_test

import (
	"testing"

	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplyTriggerCommand(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd, err := commands.NewApplyTriggerCommand("SDS-20260101-0001-A", "pattern_ready", "", nil)
		require.NoError(t, err)
		assert.Equal(t, kernel.SystemActor, cmd.Actor())
		assert.Equal(t, order.PatternReadyTrigger, cmd.Trigger())
		assert.Equal(t, order.NoPayload{}, cmd.Payload())
	})

	t.Run("unknown trigger", func(t *testing.T) {
		_, err := commands.NewApplyTriggerCommand("SDS-20260101-0001-A", "teleported", "", nil)
		assert.Error(t, err)
	})

	t.Run("every field is reported", func(t *testing.T) {
		_, err := commands.NewApplyTriggerCommand("nope", "teleported", "bad\nactor", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value", func(t *testing.T) {
		var cmd commands.ApplyTriggerCommand
		assert.ErrorIs(t, cmd.Validate(), commands.ErrApplyTriggerCommandIsNotConstructed)
	})
}
