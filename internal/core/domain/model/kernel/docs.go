// Package kernel holds the value objects shared by every aggregate of the
// pattern factory: order identifiers, actor identifiers, transition event
// identifiers and the clock abstraction used for time-driven rules.
//
// Value objects are immutable and are only valid when created through their
// constructors; the zero value of each fails Validate.
package kernel
