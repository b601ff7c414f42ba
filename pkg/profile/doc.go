// Package profile implements the name-update flow and the modal that hosts
// it. The flow re-authenticates with the entered password, updates the name,
// refreshes the session and then completes with the stored record. Failures
// are returned as *failure.Error values and routed through a
// failure.Handler by the modal.
package profile
