// Package order models the garment order lifecycle of the pattern factory.
//
// The package holds the static state registry and transition table, the SLA
// table, the transition validator and the Order aggregate itself. Orders are
// immutable snapshots: Apply validates a trigger and returns the next
// snapshot, and Resolve evaluates the time-driven part of the QC failure
// sub-flow (dispute window opening and expiry) at a given instant.
//
// Main flow:
//
//	S01 DRAFT -> S02 PAID -> S03 SCAN_RECEIVED -> S04 PROCESSING -> S05 PATTERN_READY
//	-> S06 CUTTING -> S07 PATTERN_CUT -> S08 AVAILABLE_FOR_TAILORS -> S09 CLAIMED
//	-> S10 .. S14 production -> S15 QC_IN_PROGRESS -> S16 QC_PASS -> S16a..S16c
//	-> S18 RETURNING_TO_HQ -> S19 AT_HQ -> S20 SHIPPED -> S21 DELIVERED -> S22 COMPLETE
//
// QC failure:
//
//	S15 -> S17 QC_FAIL -> S17a pending dispute -> S17b disputed -> S17d TOTAL_FAIL | S17e DISPUTE_UPHELD -> S16a
//	                      S17a -- deadline passes -------------> S17d TOTAL_FAIL
package order
