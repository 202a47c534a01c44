package varint

import "errors"

// ErrTruncated is returned when a trailing varint is cut off mid-sequence.
var ErrTruncated = errors.New("varint: truncated sequence")
