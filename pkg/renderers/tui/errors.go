package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver is returned when the renderer has no prompt driver.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of prompts.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
)
