package commands

import (
	"errors"
	"strings"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// MeasurementInput is one scanned measurement as received from the scan backend.
type MeasurementInput struct {
	Value      float64
	Unit       string
	Confidence float64
}

// CreateOrderCommand registers a new order. Without measurements the order
// is a draft awaiting payment (S01); with measurements it is a paid order
// ingested by the scan backend and lands in S03.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand("SDS-20260101-0001-A", "cust_1", "shirt", "slim", "rush", scan)
//	if err != nil {
//	    return err
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct {
	orderID      kernel.OrderID
	details      order.Details
	measurements order.Measurements

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID, customerID, garmentType, fitType, priority string,
	measurements map[string]MeasurementInput,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDetails(customerID, garmentType, fitType, priority),
		cmd.setMeasurements(measurements),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.OrderID {
	return c.orderID
}

func (c CreateOrderCommand) Details() order.Details {
	return c.details
}

func (c CreateOrderCommand) Measurements() order.Measurements {
	return c.measurements
}

// IsScanIngest reports whether the command carries a scan.
func (c CreateOrderCommand) IsScanIngest() bool {
	return !c.measurements.IsEmpty()
}

func (c *CreateOrderCommand) setOrderID(raw string) error {
	id, err := kernel.ParseOrderID(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *CreateOrderCommand) setDetails(customerID, garmentType, fitType, priority string) error {
	p, err := order.ParsePriority(priority)
	if err != nil {
		return err
	}
	c.details = order.Details{
		CustomerID:  customerID,
		GarmentType: garmentType,
		FitType:     fitType,
		Priority:    p,
	}
	return nil
}

func (c *CreateOrderCommand) setMeasurements(raw map[string]MeasurementInput) error {
	if len(raw) == 0 {
		return nil
	}

	entries := make(map[order.MeasurementCode]order.Measurement, len(raw))
	var errList []error
	for code, in := range raw {
		m, err := order.NewMeasurement(in.Value, in.Unit, in.Confidence)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		entries[order.MeasurementCode(code)] = m
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	measurements, err := order.NewMeasurements(entries)
	if err != nil {
		return err
	}
	c.measurements = measurements
	return nil
}
