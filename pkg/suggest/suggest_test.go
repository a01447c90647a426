package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetchResources(t *testing.T) {
	var gotTopicName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		gotTopicName = r.FormValue("topicName")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"resources": {
				"articles": [{"link":"https://a","score":0.85,"summary":"s","title":"A"}],
				"videos": [{"href":"https://v","body":"b","title":"V","upload_time":"2024-01-01T00:00:00Z"}],
				"images": [{"image":"https://i","title":"I"}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	content, err := c.FetchResources(context.Background(), "Algorithms")
	if err != nil {
		t.Fatalf("FetchResources failed: %v", err)
	}

	if gotTopicName != "Algorithms" {
		t.Errorf("topicName field = %q", gotTopicName)
	}
	if len(content.Articles) != 1 || content.Articles[0].Score != 0.85 {
		t.Errorf("articles = %+v", content.Articles)
	}
	if len(content.Videos) != 1 || content.Videos[0].UploadTime != "2024-01-01T00:00:00Z" {
		t.Errorf("videos = %+v", content.Videos)
	}
	if len(content.Images) != 1 || content.Images[0].Image != "https://i" {
		t.Errorf("images = %+v", content.Images)
	}
}

func TestClientNon2xxIsFetchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.FetchResources(context.Background(), "x"); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestClientNetworkErrorIsFetchFailed(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	if _, err := c.FetchResources(context.Background(), "x"); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Understanding Algorithms in Practice</title>
      <link>https://example.com/algorithms</link>
      <description>A walkthrough of classic algorithms.</description>
    </item>
    <item>
      <title>Gardening Tips</title>
      <link>https://example.com/gardening</link>
      <description>Nothing to do with computers.</description>
    </item>
  </channel>
</rss>`

func TestRSSSuggesterFiltersByTopic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	s := NewRSS([]Feed{{Name: "test", URL: srv.URL}})
	content, err := s.FetchResources(context.Background(), "Algorithms")
	if err != nil {
		t.Fatalf("FetchResources failed: %v", err)
	}

	if len(content.Articles) != 1 {
		t.Fatalf("articles = %+v, want 1 match", content.Articles)
	}
	a := content.Articles[0]
	if a.Link != "https://example.com/algorithms" {
		t.Errorf("link = %q", a.Link)
	}
	if a.Score <= 0 || a.Score > 1 {
		t.Errorf("score = %v, want in (0,1]", a.Score)
	}
}

func TestRSSSuggesterAllFeedsFailed(t *testing.T) {
	s := NewRSS([]Feed{{Name: "dead", URL: "http://127.0.0.1:1"}})
	if _, err := s.FetchResources(context.Background(), "x"); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestRelevance(t *testing.T) {
	words := titleWords("Operating Systems")
	if len(words) != 2 {
		t.Fatalf("titleWords = %v", words)
	}
	if got := relevance("three easy pieces of operating systems", words); got != 1 {
		t.Errorf("full match relevance = %v, want 1", got)
	}
	if got := relevance("systems programming", words); got != 0.5 {
		t.Errorf("half match relevance = %v, want 0.5", got)
	}
	if got := relevance("unrelated text", words); got != 0 {
		t.Errorf("no match relevance = %v, want 0", got)
	}
}
