package driveapi

import "fmt"

// TransportError reports a non-2xx response other than 401.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("drive api: status %d: %s", e.Status, e.Body)
}
