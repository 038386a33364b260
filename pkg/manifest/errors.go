package manifest

import (
	"errors"
	"fmt"
)

// ManifestShapeError reports a manifest whose nesting does not match the
// platform → category → images layout. It is never retried.
type ManifestShapeError struct {
	Platform string
	Category string
	Reason   string
}

func (e *ManifestShapeError) Error() string {
	switch {
	case e.Platform != "" && e.Category != "":
		return fmt.Sprintf("malformed manifest at %s/%s: %s", e.Platform, e.Category, e.Reason)
	case e.Platform != "":
		return fmt.Sprintf("malformed manifest at %s: %s", e.Platform, e.Reason)
	default:
		return fmt.Sprintf("malformed manifest: %s", e.Reason)
	}
}

// IsShapeError checks if an error is a manifest shape error
func IsShapeError(err error) bool {
	var shapeErr *ManifestShapeError
	return errors.As(err, &shapeErr)
}
