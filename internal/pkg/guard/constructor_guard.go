// Package guard detects value types that were declared as zero values instead
// of being built by their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller supplies
// no error of its own.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in commands, queries and payloads. Its flag is
// only set by NewConstructorGuard, so a zero value fails Validate.
//
//	type ClaimOrderCommand struct {
//	    orderID  kernel.OrderID
//	    tailorID kernel.ActorID
//	    guard    guard.ConstructorGuard
//	}
//
//	func (c ClaimOrderCommand) Validate() error {
//	    return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is
// nil) if the guard was not created through NewConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
