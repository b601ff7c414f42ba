package profile

import "errors"

// ErrClosed is returned by Modal.Submit when the modal is not open.
var ErrClosed = errors.New("profile: modal is closed")
