package charts

import (
	"errors"
	"fmt"
)

// ErrInvalidState matches every InvalidStateError.
var ErrInvalidState = errors.New("invalid chart state")

// InvalidStateError reports a chart rendered without a mandatory attribute.
type InvalidStateError struct {
	Anchor    string
	Attribute string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("chart %s: mandatory attribute %q is missing", e.Anchor, e.Attribute)
}

// Is makes errors.Is(err, ErrInvalidState) hold.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
