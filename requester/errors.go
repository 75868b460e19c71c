package requester

import "fmt"

// RemoteServiceError reports a non-2xx answer from an upstream API.
type RemoteServiceError struct {
	Service    string
	URL        string
	StatusCode int
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s responded with %d", e.Service, e.StatusCode)
}
