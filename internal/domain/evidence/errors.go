package evidence

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType indicates the evidence type is not in the enumerated set.
var ErrUnsupportedType = errors.New("unsupported evidence type")

// ErrEmptyContent indicates the item's content is empty or whitespace-only.
// Such items short-circuit to a zero-confidence result without an oracle call.
var ErrEmptyContent = errors.New("evidence content is empty")

func unsupportedType(s string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}
