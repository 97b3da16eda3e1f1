package feed

import (
	"fmt"

	"github.com/lysyi3m/rss-fetch/app/config"
)

// Filterer evaluates an item title against a feed's include, exclude and
// trigger patterns, in that fixed order. It holds no state.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) ShouldDownload(title string, feedConfig *config.Feed) bool {
	return f.Run(title, feedConfig).Download
}

func (f *Filterer) Run(title string, feedConfig *config.Feed) Decision {
	if title == "" {
		return Decision{Reason: "empty title"}
	}

	if feedConfig.Include != nil && !feedConfig.Include.MatchString(title) {
		return Decision{Reason: fmt.Sprintf("does not match include filter '%s'", feedConfig.Include)}
	}

	if feedConfig.Exclude != nil && feedConfig.Exclude.MatchString(title) {
		return Decision{Reason: fmt.Sprintf("matches exclude filter '%s'", feedConfig.Exclude)}
	}

	for _, trigger := range feedConfig.Triggers {
		if trigger.MatchString(title) {
			return Decision{Download: true, Reason: fmt.Sprintf("matches download pattern '%s'", trigger)}
		}
	}

	return Decision{Reason: "matches no download pattern"}
}
