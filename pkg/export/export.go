// Package export serializes a topic for sharing. JSON is the only
// implemented format; PDF and DOCX report ErrNotImplemented instead of
// silently succeeding.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/elonfeng/ressa/pkg/topic"
)

// ErrNotImplemented marks export formats that are stubs.
var ErrNotImplemented = errors.New("not implemented")

type document struct {
	Title     string           `json:"title"`
	Resources []topic.Resource `json:"resources"`
}

// JSON renders the topic as a 2-space-indented JSON document with its title
// and the resource array as stored.
func JSON(t topic.Topic) ([]byte, error) {
	doc := document{Title: t.Title, Resources: t.Resources}
	if doc.Resources == nil {
		doc.Resources = []topic.Resource{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t.Title, err)
	}
	return data, nil
}

// PDF is a stub.
func PDF(t topic.Topic) ([]byte, error) {
	return nil, fmt.Errorf("pdf export: %w", ErrNotImplemented)
}

// DOCX is a stub.
func DOCX(t topic.Topic) ([]byte, error) {
	return nil, fmt.Errorf("docx export: %w", ErrNotImplemented)
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName returns the export file name for a topic: the title with
// whitespace runs collapsed to underscores, plus the format extension.
func FileName(t topic.Topic, ext string) string {
	return whitespace.ReplaceAllString(t.Title, "_") + "." + ext
}
