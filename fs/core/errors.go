package core

import "errors"

// ErrCrossDevice is wrapped by Rename errors when the source and destination
// live on different devices and cannot be renamed atomically.
var ErrCrossDevice = errors.New("cross-device rename")
