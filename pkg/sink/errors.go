package sink

import "errors"

var (
	ErrUnsupportedSink = errors.New("unsupported sink")
	ErrSinkClosed      = errors.New("sink closed")
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrReservedDataset = errors.New("reserved dataset name")
	ErrMalformedCSV    = errors.New("malformed point csv")

	// ErrStop ends ForEachPoint early without error
	ErrStop = errors.New("stop iteration")
)
