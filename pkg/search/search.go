// Package search provides the query-time filtered view over topics. It is a
// pure function over an in-memory snapshot: recomputed in full per query,
// never mutating anything. That is O(topics x resources) per call, which is
// fine at the tens-to-hundreds scale this data stays at.
package search

import (
	"strings"

	"github.com/elonfeng/ressa/pkg/topic"
)

// Match is one matching topic plus the subset of its resources whose
// display string also matched, for result previews. A topic can match on
// title alone with an empty resource subset.
type Match struct {
	Topic     topic.Topic
	Resources []topic.Resource
}

// Segment is one run of text, flagged when it equals the query.
type Segment struct {
	Text  string
	Match bool
}

// Search returns the topics matching query by case-insensitive substring
// against the title and each resource's display string. Images have no
// display string and are excluded from text search.
func Search(topics []topic.Topic, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []Match
	for _, t := range topics {
		titleHit := strings.Contains(strings.ToLower(t.Title), q)

		var resources []topic.Resource
		for _, r := range t.Resources {
			display := r.DisplayString()
			if display == "" {
				continue
			}
			if strings.Contains(strings.ToLower(display), q) {
				resources = append(resources, r.Clone())
			}
		}

		if titleHit || len(resources) > 0 {
			matches = append(matches, Match{Topic: t.Clone(), Resources: resources})
		}
	}
	return matches
}

// Highlight splits text into ordered segments on case-insensitive
// occurrences of query. An empty query returns the whole text as one
// non-matching segment.
func Highlight(text, query string) []Segment {
	if query == "" {
		return []Segment{{Text: text}}
	}

	q := strings.ToLower(query)
	var segments []Segment
	rest := text
	for {
		i := strings.Index(strings.ToLower(rest), q)
		if i < 0 {
			break
		}
		if i > 0 {
			segments = append(segments, Segment{Text: rest[:i]})
		}
		segments = append(segments, Segment{Text: rest[i : i+len(q)], Match: true})
		rest = rest[i+len(q):]
	}
	if rest != "" || len(segments) == 0 {
		segments = append(segments, Segment{Text: rest})
	}
	return segments
}
