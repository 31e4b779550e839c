package recorder

import "errors"

// Common errors
var (
	ErrUnsupportedProfile = errors.New("capture profile not supported by this backend")
	ErrNoInputDevice      = errors.New("no input device available")
)
