package pipeline

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ExtractionError is a transport failure or an unparseable provider response.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extract: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// TransformationError is a malformed daily series.
type TransformationError struct {
	Err error
}

func (e *TransformationError) Error() string { return "transform: " + e.Err.Error() }
func (e *TransformationError) Unwrap() error { return e.Err }

// LoadError is a failed warehouse transaction. The table keeps its pre-run rows.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "load: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// logErrStack logs error with stack trace.
func logErrStack(err error) {
	log.Error().Stack().Err(errors.WithStack(err)).Msg("")
}
