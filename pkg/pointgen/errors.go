package pointgen

import "errors"

var (
	ErrInvalidCount     = errors.New("invalid point count")
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrNilSink          = errors.New("nil sink")
)
