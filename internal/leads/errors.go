package leads

import "errors"

// ErrEmptyBody is returned when a notification has no usable body text.
var ErrEmptyBody = errors.New("leads: notification body is empty")
