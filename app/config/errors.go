package config

import "fmt"

type ErrorKind int

const (
	KindUnreadable ErrorKind = iota + 1
	KindParse
	KindMissingFeeds
	KindMissingDownloadDir
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreadable:
		return "unreadable config"
	case KindParse:
		return "parse error"
	case KindMissingFeeds:
		return "missing feeds table"
	case KindMissingDownloadDir:
		return "missing download_dir"
	default:
		return "config error"
	}
}

// Error is returned by the loader. Every kind is fatal at startup.
type Error struct {
	Kind   ErrorKind
	Source string
	Err    error
}

var (
	ErrUnreadable         = &Error{Kind: KindUnreadable}
	ErrParse              = &Error{Kind: KindParse}
	ErrMissingFeeds       = &Error{Kind: KindMissingFeeds}
	ErrMissingDownloadDir = &Error{Kind: KindMissingDownloadDir}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, ErrMissingFeeds) works for any source.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
