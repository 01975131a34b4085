// Package commands contains the operations that change orders.
//
// Every handler runs inside one unit of work: begin, apply the domain
// service, commit, then publish the committed transitions. A rejected
// trigger can still commit when the order needed a lazy resolution (for
// example an expired dispute window); the handler then returns the
// rejection after committing.
package commands
