package midi

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrFormat    = errors.New("format error")
	ErrTruncated = errors.New("truncated input")
	ErrIO        = errors.New("i/o error")
)

type Stage string

const (
	StageHeader Stage = "header"
	StageChunk  Stage = "chunk"
	StageEvent  Stage = "event"
)

// ParseError locates a decode failure. Err wraps one of ErrFormat,
// ErrTruncated or ErrIO.
type ParseError struct {
	Stage  Stage
	Track  int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Stage == StageHeader {
		return fmt.Sprintf("midi: %s at offset %d: %v", e.Stage, e.Offset, e.Err)
	}
	return fmt.Sprintf("midi: %s of track %d at offset %d: %v", e.Stage, e.Track, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Cause() error {
	return e.Err
}
