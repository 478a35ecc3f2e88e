package annotation

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is matched by every OutOfRangeError
var ErrOutOfRange = errors.New("index out of range")

// OutOfRangeError reports an index that does not address a current entry
type OutOfRangeError struct {
	Sequence string
	Index    int
	Len      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Sequence, e.Index, e.Len)
}

// Is reports whether target is ErrOutOfRange
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
