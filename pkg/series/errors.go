package series

import "fmt"

// InsufficientDataError reports an input series shorter than the minimum the
// indicator needs to produce one value.
type InsufficientDataError struct {
	Required int
	Provided int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d points, got %d", e.Required, e.Provided)
}

// InvalidParamsError reports a recognized option that fails its domain check.
type InvalidParamsError struct {
	Param    string
	Value    interface{}
	Expected string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameter %q: got %v, expected %s", e.Param, e.Value, e.Expected)
}

// InvalidDataFormatError reports an element that is the wrong shape for the
// requested computation. Index is -1 when no single element is at fault.
type InvalidDataFormatError struct {
	Expected string
	Received string
	Index    int
}

func (e *InvalidDataFormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid data format at index %d: expected %s, received %s", e.Index, e.Expected, e.Received)
	}
	return fmt.Sprintf("invalid data format: expected %s, received %s", e.Expected, e.Received)
}

// ValidationError reports a data value that is physically nonsensical
// (negative price, negative volume, high below low).
type ValidationError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%s: %s", e.Field, e.Value, e.Constraint)
}

// StreamStateError reports a streaming call against state that does not match
// what the indicator produces.
type StreamStateError struct {
	Operation string
	Reason    string
}

func (e *StreamStateError) Error() string {
	return fmt.Sprintf("stream state error in %s: %s", e.Operation, e.Reason)
}

// CalculationError reports a numeric fault surfaced from the decimal substrate,
// such as a division by a zero divisor that was not pre-checked.
type CalculationError struct {
	Operation string
	Reason    string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation error in %s: %s", e.Operation, e.Reason)
}
