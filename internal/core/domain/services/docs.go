// Package services coordinates order transitions that need more than a
// single aggregate call: loading and storing through a repository,
// compare-and-swap conflict handling, and the QC dispute sub-flow.
//
// The package includes:
//   - TransitionService: load, resolve, apply and store one trigger
//   - ClaimCoordinator: tailor claims where exactly one concurrent claim wins
//   - DisputeFlow: dispute filing, reinspection and expiry sweeps
//   - JobBoard: ordering of claimable work for tailors
package services
