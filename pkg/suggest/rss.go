package suggest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/elonfeng/ressa/pkg/topic"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// RSSSuggester builds a suggestion bundle from RSS/Atom feeds, for use when
// no remote backend is configured. Entries are matched against the topic
// title and scored by how many of its words they mention.
type RSSSuggester struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
}

// NewRSS creates an RSS-backed suggester.
func NewRSS(feeds []Feed) *RSSSuggester {
	return &RSSSuggester{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

// FetchResources collects matching feed entries as articles. Per-feed
// failures are reported to stderr and skipped; the fetch fails only when
// every feed errored.
func (s *RSSSuggester) FetchResources(ctx context.Context, topicTitle string) (topic.BundleContent, error) {
	words := titleWords(topicTitle)

	var content topic.BundleContent
	failed := 0
	for _, feed := range s.feeds {
		articles, err := s.collectFeed(ctx, feed, words)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  feed %s error: %v\n", feed.Name, err)
			failed++
			continue
		}
		content.Articles = append(content.Articles, articles...)
	}

	if failed == len(s.feeds) && len(s.feeds) > 0 {
		return topic.BundleContent{}, fmt.Errorf("%w: all feeds failed", ErrFetchFailed)
	}
	return content, nil
}

func (s *RSSSuggester) collectFeed(ctx context.Context, feed Feed, words []string) ([]topic.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "ressa/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	var articles []topic.Article
	for _, entry := range parsed.Items {
		score := relevance(entry.Title+" "+entry.Description, words)
		if score == 0 {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		articles = append(articles, topic.Article{
			Link:    link,
			Score:   score,
			Summary: truncate(entry.Description, 300),
			Title:   entry.Title,
		})
	}
	return articles, nil
}

// titleWords splits a topic title into lowercase words worth matching on.
// One- and two-letter words match too much text to be useful.
func titleWords(title string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 && strings.TrimSpace(title) != "" {
		words = append(words, strings.ToLower(strings.TrimSpace(title)))
	}
	return words
}

// relevance is the fraction of topic words the text mentions, 0..1.
func relevance(text string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	text = strings.ToLower(text)
	hits := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
