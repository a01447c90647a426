package search

import (
	"testing"

	"github.com/elonfeng/ressa/pkg/topic"
)

func sampleTopics() []topic.Topic {
	return []topic.Topic{
		{
			ID:    "1",
			Title: "Algorithms",
			Resources: []topic.Resource{
				topic.Text("https://github.com"),
				topic.Text("CLRS book"),
			},
		},
		{
			ID:    "2",
			Title: "Photography",
			Resources: []topic.Resource{
				topic.Image("file:///pics/github-screenshot.png"),
				topic.Document("file:///docs/lighting.pdf", "lighting.pdf", "application/pdf", 1),
			},
		},
	}
}

func TestSearchMatchesTitleAndResources(t *testing.T) {
	matches := Search(sampleTopics(), "git")

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Topic.ID != "1" {
		t.Errorf("matched topic %s, want 1", m.Topic.ID)
	}
	if len(m.Resources) != 1 || m.Resources[0].Text != "https://github.com" {
		t.Errorf("resource subset = %+v", m.Resources)
	}
}

func TestSearchTitleOnlyMatchHasEmptyResourceSubset(t *testing.T) {
	matches := Search(sampleTopics(), "photo")

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Topic.ID != "2" {
		t.Errorf("matched topic %s, want 2", matches[0].Topic.ID)
	}
	if len(matches[0].Resources) != 0 {
		t.Errorf("resource subset = %+v, want empty", matches[0].Resources)
	}
}

func TestSearchImagesExcludedFromTextSearch(t *testing.T) {
	// "screenshot" only appears in an image URI, which has no display string.
	if matches := Search(sampleTopics(), "screenshot"); len(matches) != 0 {
		t.Errorf("image URI matched text search: %+v", matches)
	}
}

func TestSearchDocumentsMatchByName(t *testing.T) {
	matches := Search(sampleTopics(), "lighting")
	if len(matches) != 1 || len(matches[0].Resources) != 1 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if matches[0].Resources[0].Kind != topic.KindDocument {
		t.Errorf("matched kind %q, want document", matches[0].Resources[0].Kind)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	if matches := Search(sampleTopics(), "ALGO"); len(matches) != 1 {
		t.Errorf("uppercase query found %d matches, want 1", len(matches))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	if matches := Search(sampleTopics(), "   "); matches != nil {
		t.Errorf("blank query returned %+v, want nil", matches)
	}
}

func TestHighlight(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{
			"mid-string match",
			"github.com", "git",
			[]Segment{{Text: "git", Match: true}, {Text: "hub.com"}},
		},
		{
			"case-insensitive match keeps original casing",
			"GitHub and github", "github",
			[]Segment{{Text: "GitHub", Match: true}, {Text: " and "}, {Text: "github", Match: true}},
		},
		{
			"no match",
			"plain text", "zzz",
			[]Segment{{Text: "plain text"}},
		},
		{
			"empty query",
			"anything", "",
			[]Segment{{Text: "anything"}},
		},
	}

	for _, tc := range cases {
		got := Highlight(tc.text, tc.query)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %d segments %+v, want %d", tc.name, len(got), got, len(tc.want))
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: segment %d = %+v, want %+v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}
