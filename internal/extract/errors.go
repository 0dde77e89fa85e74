package extract

import (
	"errors"
	"fmt"
	"strings"
)

// UnresolvedTargetError reports that no catalog entity could be recognized
// in the request text. It is recoverable: the caller should prompt the user
// with Known, the current catalog's entity names.
type UnresolvedTargetError struct {
	// Text is the normalized request text that failed to resolve.
	Text string

	// Known lists the catalog entity names available at extraction time.
	Known []string
}

// Error implements the error interface.
func (e *UnresolvedTargetError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("no target entity recognized in %q (catalog is empty)", e.Text)
	}
	return fmt.Sprintf("no target entity recognized in %q (known: %s)", e.Text, strings.Join(e.Known, ", "))
}

// IsUnresolvedTarget returns true if the error is an unresolved target.
// Uses errors.As to handle wrapped errors.
func IsUnresolvedTarget(err error) bool {
	var ute *UnresolvedTargetError
	return errors.As(err, &ute)
}
