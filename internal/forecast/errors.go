package forecast

import (
	"errors"
	"fmt"
)

// MinRows is the smallest number of usable rows the engine will forecast from.
const MinRows = 4

// Sentinels matched by DataError.Is.
var (
	ErrNoValidRows      = errors.New("no valid data rows")
	ErrInsufficientRows = errors.New("insufficient data rows")
)

// DataError reports input that cannot be forecast.
type DataError struct {
	Kind  error // ErrNoValidRows or ErrInsufficientRows
	Valid int
	Need  int
}

func (e *DataError) Error() string {
	if e.Kind == ErrNoValidRows {
		return fmt.Sprintf("%v: need at least %d rows with a positive sales value", e.Kind, e.Need)
	}
	return fmt.Sprintf("%v: found %d valid rows, need at least %d", e.Kind, e.Valid, e.Need)
}

// Is lets errors.Is match the sentinel kind.
func (e *DataError) Is(target error) bool {
	return target == e.Kind
}

func newDataError(valid int) *DataError {
	kind := ErrInsufficientRows
	if valid == 0 {
		kind = ErrNoValidRows
	}
	return &DataError{Kind: kind, Valid: valid, Need: MinRows}
}
