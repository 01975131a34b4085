package order

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"

	"patternfactory/internal/pkg/errs"
)

const (
	P0ConfidenceThreshold = 0.90
	P1ConfidenceThreshold = 0.85

	UnitCentimetres = "cm"
)

// MeasurementCode is the short body-measurement code produced by the scanner,
// e.g. "Cg" for chest girth.
type MeasurementCode string

// MeasurementClass groups codes by how strongly the pattern depends on them.
type MeasurementClass string

const (
	ClassP0    MeasurementClass = "P0"
	ClassP1    MeasurementClass = "P1"
	ClassOther MeasurementClass = ""
)

var (
	p0Codes = []MeasurementCode{"Cg", "Wg", "Hg", "Sh", "Al", "Bw", "Nc"}
	p1Codes = []MeasurementCode{"Bi", "Wc", "Il", "Th", "Kn", "Ca"}
)

// P0Codes returns the codes every scan must provide.
func P0Codes() []MeasurementCode {
	return slices.Clone(p0Codes)
}

func P1Codes() []MeasurementCode {
	return slices.Clone(p1Codes)
}

func (c MeasurementCode) Class() MeasurementClass {
	switch {
	case slices.Contains(p0Codes, c):
		return ClassP0
	case slices.Contains(p1Codes, c):
		return ClassP1
	default:
		return ClassOther
	}
}

// Threshold returns the minimum confidence for the class and whether the
// class is checked at all.
func (c MeasurementClass) Threshold() (float64, bool) {
	switch c {
	case ClassP0:
		return P0ConfidenceThreshold, true
	case ClassP1:
		return P1ConfidenceThreshold, true
	default:
		return 0, false
	}
}

type Measurement struct {
	value      float64
	unit       string
	confidence float64
}

func NewMeasurement(value float64, unit string, confidence float64) (Measurement, error) {
	if unit == "" {
		unit = UnitCentimetres
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Measurement{}, errs.NewValueIsInvalidErrorWithCause("measurement value", fmt.Errorf("%v is not a finite number", value))
	}
	if value <= 0 {
		return Measurement{}, errs.NewValueIsInvalidErrorWithCause("measurement value", fmt.Errorf("%v is not greater than 0", value))
	}
	if unit != UnitCentimetres {
		return Measurement{}, errs.NewValueIsInvalidErrorWithCause("measurement unit", fmt.Errorf("%q is not %q", unit, UnitCentimetres))
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return Measurement{}, errs.NewValueIsOutOfRangeError("measurement confidence", confidence, 0, 1)
	}
	return Measurement{value: value, unit: unit, confidence: confidence}, nil
}

func (m Measurement) Value() float64 {
	return m.value
}

func (m Measurement) Unit() string {
	return m.unit
}

func (m Measurement) Confidence() float64 {
	return m.confidence
}

// Measurements is an immutable set of measurements keyed by code.
type Measurements struct {
	entries map[MeasurementCode]Measurement
}

// NewMeasurements copies entries; later changes to the input map do not leak in.
func NewMeasurements(entries map[MeasurementCode]Measurement) (Measurements, error) {
	if len(entries) == 0 {
		return Measurements{}, errs.NewValueIsRequiredError("measurements")
	}

	var errList []error
	for code := range entries {
		if code == "" {
			errList = append(errList, errs.NewValueIsRequiredError("measurement code"))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return Measurements{}, err
	}

	return Measurements{entries: maps.Clone(entries)}, nil
}

func (m Measurements) Len() int {
	return len(m.entries)
}

func (m Measurements) IsEmpty() bool {
	return len(m.entries) == 0
}

func (m Measurements) Get(code MeasurementCode) (Measurement, bool) {
	v, ok := m.entries[code]
	return v, ok
}

// Codes returns the measurement codes in sorted order.
func (m Measurements) Codes() []MeasurementCode {
	return slices.Sorted(maps.Keys(m.entries))
}

// All yields measurements sorted by code.
func (m Measurements) All() iter.Seq2[MeasurementCode, Measurement] {
	return func(yield func(MeasurementCode, Measurement) bool) {
		for _, code := range m.Codes() {
			if !yield(code, m.entries[code]) {
				return
			}
		}
	}
}

type FlagReason string

const (
	FlagLowConfidence FlagReason = "low_confidence"
	FlagMissing       FlagReason = "missing"
)

// MeasurementFlag marks a measurement that needs human review before the
// pattern is generated.
type MeasurementFlag struct {
	Code       MeasurementCode
	Class      MeasurementClass
	Confidence float64
	Threshold  float64
	Reason     FlagReason
}

// Flags lists P0 and P1 measurements below their confidence threshold and
// P0 measurements the scan did not provide, in a stable order.
func (m Measurements) Flags() []MeasurementFlag {
	var flags []MeasurementFlag
	for code, v := range m.All() {
		threshold, checked := code.Class().Threshold()
		if checked && v.confidence < threshold {
			flags = append(flags, MeasurementFlag{
				Code:       code,
				Class:      code.Class(),
				Confidence: v.confidence,
				Threshold:  threshold,
				Reason:     FlagLowConfidence,
			})
		}
	}
	for _, code := range p0Codes {
		if _, ok := m.entries[code]; !ok {
			flags = append(flags, MeasurementFlag{
				Code:      code,
				Class:     ClassP0,
				Threshold: P0ConfidenceThreshold,
				Reason:    FlagMissing,
			})
		}
	}
	return flags
}

// Equal reports whether both sets hold the same codes with the same values.
func (m Measurements) Equal(other Measurements) bool {
	return maps.Equal(m.entries, other.entries)
}
