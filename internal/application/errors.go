package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrConnection  = errors.New("connection unavailable")
	ErrTransaction = errors.New("transaction failed")
	ErrAuth        = errors.New("authentication failed")
)

// OpError attaches the operation and symbol to a failure. errors.Is matches both
// the Kind sentinel and the underlying cause.
type OpError struct {
	Op     string
	Symbol string
	Kind   error
	Err    error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.Symbol != "" {
		msg += " " + e.Symbol
	}
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// wrapWrite tags a failed write with its op and symbol. Connection failures keep
// their kind; everything else surfaces as a transaction failure.
func wrapWrite(op, symbol string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	kind := ErrTransaction
	if errors.Is(err, ErrConnection) {
		kind = ErrConnection
	}
	return &OpError{Op: op, Symbol: symbol, Kind: kind, Err: err}
}
