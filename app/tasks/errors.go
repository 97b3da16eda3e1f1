package tasks

import (
	"errors"
	"fmt"
)

var ErrUnknownFeed = errors.New("unknown feed")

type FeedErrorKind int

const (
	KindFetch FeedErrorKind = iota + 1
	KindParse
)

func (k FeedErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FeedError aborts one feed for the current cycle. Other feeds are unaffected.
type FeedError struct {
	Kind FeedErrorKind
	Feed string
	URL  string
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s: %s %s: %v", e.Feed, e.Kind, e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

type ItemErrorKind int

const (
	KindMissingTitle ItemErrorKind = iota + 1
	KindMissingLink
)

func (k ItemErrorKind) String() string {
	switch k {
	case KindMissingTitle:
		return "missing title"
	case KindMissingLink:
		return "missing link"
	default:
		return "unknown"
	}
}

// ItemError marks a single feed entry that cannot be processed.
type ItemError struct {
	Kind  ItemErrorKind
	Feed  string
	GUID  string
	Title string
}

func (e *ItemError) Error() string {
	id := e.Title
	if id == "" {
		id = e.GUID
	}
	if id == "" {
		return fmt.Sprintf("feed %s: item %s", e.Feed, e.Kind)
	}
	return fmt.Sprintf("feed %s: item %q: %s", e.Feed, id, e.Kind)
}
