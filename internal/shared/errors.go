package shared

import "errors"

// ErrSuperseded indicates a debounced call was replaced by newer input.
var ErrSuperseded = errors.New("superseded by newer input")
