package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"patternfactory/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderID", "SDS-20260101-0001-A")

		assert.Equal(t, "orderID", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: SDS-20260101-0001-A", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("orderID", "SDS-20260101-0001-A", cause)

		assert.Equal(t,
			"object not found: param is: orderID, ID is: SDS-20260101-0001-A (cause: connection reset)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	err := errs.NewValueIsInvalidErrorWithCause("priority", errors.New("urgent is not a priority"))

	assert.Equal(t, "value is invalid: priority (cause: urgent is not a priority)", err.Error())
	assert.Equal(t, "value is invalid: priority", errs.NewValueIsInvalidError("priority").Error())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("formats bounds", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("confidence", 1.5, 0.0, 1.0)

		assert.Equal(t, "value is out of range: 1.5 is confidence, min value is 0, max value is 1", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("keeps newlines out of the message", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("reason", "bad\nseam", 0, 10)

		assert.NotContains(t, err.Error(), "\n")
		assert.Contains(t, err.Error(), "bad seam")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredErrorWithCause("tailorID", errors.New("empty"))

	assert.Equal(t, "value is required: tailorID (cause: empty)", err.Error())
	assert.Equal(t, "value is required: tailorID", errs.NewValueIsRequiredError("tailorID").Error())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("order", 3)

	assert.Equal(t, "version is invalid: order expected version 3", err.Error())
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	withCause := errs.NewVersionIsInvalidErrorWithCause("order", 3, errors.New("row moved"))
	assert.Equal(t, "version is invalid: order expected version 3 (cause: row moved)", withCause.Error())
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", errs.NewObjectNotFoundError("orderID", "x"))

	var notFound *errs.ObjectNotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, "x", notFound.ID)
	assert.ErrorIs(t, wrapped, errs.ErrObjectNotFound)
}
