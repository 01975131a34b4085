package kernel

import (
	"fmt"
	"regexp"
	"time"

	"patternfactory/internal/pkg/errs"
)

const orderIDDateLayout = "20060102"

var (
	ErrOrderIDIsNotConstructed = errs.NewValueIsRequiredError("order id must be created via NewOrderID or ParseOrderID")

	orderIDPattern = regexp.MustCompile(`^SDS-(\d{8})-([0-9A-Z]{4})-([A-Z])$`)
	serialPattern  = regexp.MustCompile(`^[0-9A-Z]{4}$`)
)

// OrderID identifies an order as SDS-YYYYMMDD-NNNN-R: the booking date, a four
// character serial and a single revision letter.
type OrderID struct {
	value    string
	date     time.Time
	serial   string
	revision byte
}

// NewOrderID builds an identifier from its parts. The date is truncated to
// the calendar day in UTC.
func NewOrderID(date time.Time, serial string, revision byte) (OrderID, error) {
	if date.IsZero() {
		return OrderID{}, errs.NewValueIsRequiredError("order id date")
	}
	if !serialPattern.MatchString(serial) {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause("order id serial",
			fmt.Errorf("%q is not four characters of 0-9A-Z", serial))
	}
	if revision < 'A' || revision > 'Z' {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause("order id revision",
			fmt.Errorf("%q is not a letter A-Z", revision))
	}

	day := date.UTC()
	return OrderID{
		value:    fmt.Sprintf("SDS-%s-%s-%c", day.Format(orderIDDateLayout), serial, revision),
		date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		serial:   serial,
		revision: revision,
	}, nil
}

// ParseOrderID validates the textual form, including the calendar date.
func ParseOrderID(s string) (OrderID, error) {
	m := orderIDPattern.FindStringSubmatch(s)
	if m == nil {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause("order id",
			fmt.Errorf("%q does not match SDS-YYYYMMDD-NNNN-R", s))
	}

	date, err := time.Parse(orderIDDateLayout, m[1])
	if err != nil {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause("order id date", err)
	}

	return NewOrderID(date, m[2], m[3][0])
}

// MustParseOrderID panics on malformed input. Intended for fixtures.
func MustParseOrderID(s string) OrderID {
	id, err := ParseOrderID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id OrderID) String() string {
	return id.value
}

func (id OrderID) Date() time.Time {
	return id.date
}

func (id OrderID) Serial() string {
	return id.serial
}

func (id OrderID) Revision() byte {
	return id.revision
}

func (id OrderID) IsEqual(other OrderID) bool {
	return id.value == other.value
}

func (id OrderID) Validate() error {
	if id.value == "" {
		return ErrOrderIDIsNotConstructed
	}
	return nil
}
