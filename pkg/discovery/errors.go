package discovery

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed discovery request. Callers can
// errors.As into it to recover the offending field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("discovery: invalid %s: %s", e.Field, e.Msg)
}

// Sentinel error kinds used to classify engine and enrichment failures.
// Engines wrap these so callers can distinguish "the network didn't answer"
// from "we refused to talk to that address" without string matching.
var (
	// ErrTransportLocal covers failures to open or use the local socket
	// (bind failure, interface lookup failure, permission denied).
	ErrTransportLocal = errors.New("discovery: local transport error")

	// ErrTransportRemote covers failures reaching or hearing back from the
	// network (timeout, connection refused, ICMP unreachable).
	ErrTransportRemote = errors.New("discovery: remote transport error")

	// ErrParse covers a response that arrived but could not be decoded.
	ErrParse = errors.New("discovery: malformed response")

	// ErrUnsafeTarget is returned when a candidate address fails the
	// private/loopback/link-local safety check and a probe is refused.
	ErrUnsafeTarget = errors.New("discovery: target address is not eligible for probing")

	// ErrStage covers an enrichment stage panicking or returning an
	// unexpected error; the pipeline records it against the device instead
	// of failing the whole scan.
	ErrStage = errors.New("discovery: enrichment stage error")
)

// EngineError wraps a per-engine failure with the engine name and a
// sentinel kind, letting the orchestrator log clearly without engines
// needing to know about logging.
type EngineError struct {
	Engine string
	Kind   error
	Err    error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Engine, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Engine, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewEngineError(engine string, kind, err error) *EngineError {
	return &EngineError{Engine: engine, Kind: kind, Err: err}
}
