package order_test

import (
	"math"
	"testing"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeasurement(t *testing.T) {
	m, err := order.NewMeasurement(102.5, "", 0.93)
	require.NoError(t, err)
	assert.Equal(t, "cm", m.Unit())
	assert.InDelta(t, 102.5, m.Value(), 1e-9)

	_, err = order.NewMeasurement(0, "cm", 0.9)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.NewMeasurement(40, "in", 0.9)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.NewMeasurement(40, "cm", 1.2)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	t.Run("non-finite numbers", func(t *testing.T) {
		_, err := order.NewMeasurement(math.NaN(), "cm", 0.9)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = order.NewMeasurement(math.Inf(1), "cm", 0.9)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = order.NewMeasurement(40, "cm", math.NaN())
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestNewMeasurements_CopiesInput(t *testing.T) {
	chest, _ := order.NewMeasurement(100, "cm", 0.95)
	input := map[order.MeasurementCode]order.Measurement{"Cg": chest}

	m, err := order.NewMeasurements(input)
	require.NoError(t, err)

	delete(input, "Cg")
	_, ok := m.Get("Cg")
	assert.True(t, ok)

	_, err = order.NewMeasurements(nil)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestMeasurements_Flags(t *testing.T) {
	entries := map[order.MeasurementCode]order.Measurement{}
	add := func(code order.MeasurementCode, confidence float64) {
		m, err := order.NewMeasurement(50, "cm", confidence)
		require.NoError(t, err)
		entries[code] = m
	}
	for _, code := range order.P0Codes() {
		add(code, 0.90)
	}
	add("Wg", 0.89)
	add("Kn", 0.85)
	add("Ca", 0.84)
	add("Xx", 0.10)
	delete(entries, "Nc")

	m, err := order.NewMeasurements(entries)
	require.NoError(t, err)

	flags := m.Flags()
	require.Len(t, flags, 3)
	assert.Equal(t, order.MeasurementFlag{Code: "Ca", Class: order.ClassP1, Confidence: 0.84, Threshold: 0.85, Reason: order.FlagLowConfidence}, flags[0])
	assert.Equal(t, order.MeasurementCode("Wg"), flags[1].Code)
	assert.Equal(t, order.ClassP0, flags[1].Class)
	assert.Equal(t, order.MeasurementFlag{Code: "Nc", Class: order.ClassP0, Threshold: 0.90, Reason: order.FlagMissing}, flags[2])
}
