// Package queries holds the read side of the order lifecycle service.
//
// Every query reads through ports.OrderReader and reports orders as they
// stand at the handler's clock, so an order whose dispute window lapsed is
// shown as TOTAL_FAIL even before the sweeper stores that outcome.
package queries
