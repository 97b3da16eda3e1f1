package download

import "fmt"

type ErrorKind int

const (
	KindRequest ErrorKind = iota + 1
	KindStatus
	KindWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindStatus:
		return "status"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error describes a failed item download. The item must not be recorded as
// fetched so that the next cycle retries it.
type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int // set for KindStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("download %s: %s failed: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
