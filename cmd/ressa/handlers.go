package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/ressa/internal/config"
	"github.com/elonfeng/ressa/internal/store"
	"github.com/elonfeng/ressa/pkg/calendar"
	"github.com/elonfeng/ressa/pkg/export"
	"github.com/elonfeng/ressa/pkg/search"
	"github.com/elonfeng/ressa/pkg/server"
	"github.com/elonfeng/ressa/pkg/share"
	"github.com/elonfeng/ressa/pkg/suggest"
	"github.com/elonfeng/ressa/pkg/topic"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, *store.SQLiteKV, error) {
	kv, err := store.OpenKV(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	s := store.New(kv)
	if err := s.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("load store: %w", err)
	}
	return s, kv, nil
}

func buildSuggester(cfg *config.Config) suggest.Service {
	if cfg.Suggest.BaseURL != "" {
		return suggest.NewClient(cfg.Suggest.BaseURL, cfg.Suggest.ParseTimeout())
	}
	if len(cfg.Suggest.Feeds) > 0 {
		feeds := make([]suggest.Feed, len(cfg.Suggest.Feeds))
		for i, f := range cfg.Suggest.Feeds {
			feeds[i] = suggest.Feed{Name: f.Name, URL: f.URL}
		}
		return suggest.NewRSS(feeds)
	}
	return nil
}

func runList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	topics := s.Topics()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	if len(topics) == 0 {
		fmt.Println("no topics yet (create one: ressa add <title>)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tRESOURCES\tSCHEDULED")
	for _, t := range topics {
		scheduled := ""
		if t.IsScheduled {
			scheduled = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Title, len(t.Resources), scheduled)
	}
	return w.Flush()
}

func runAdd(titleWords []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	t, err := s.AddTopic(context.Background(), strings.Join(titleWords, " "))
	if err != nil {
		return err
	}

	fmt.Printf("created topic %s: %s\n", t.ID, t.Title)
	return nil
}

func runShow(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("topic %s: %w", id, store.ErrTopicNotFound)
	}

	fmt.Printf("%s (%s)\n", t.Title, t.ID)
	if t.IsScheduled {
		fmt.Println("scheduled for review")
	}
	for _, r := range t.Resources {
		fmt.Println("  " + describeResource(r))
	}
	return nil
}

func describeResource(r topic.Resource) string {
	switch r.Kind {
	case topic.KindText:
		if topic.LooksLikeURL(r.Text) {
			return r.Text + "  [link]"
		}
		return r.Text
	case topic.KindImage:
		return r.URI + "  [image]"
	case topic.KindDocument:
		return fmt.Sprintf("%s (%s, %d bytes)  [document]", r.Name, r.MimeType, r.SizeBytes)
	case topic.KindBundle:
		return fmt.Sprintf("%s (%d articles, %d videos, %d images)  [bundle]",
			r.Title, len(r.Content.Articles), len(r.Content.Videos), len(r.Content.Images))
	}
	return "?"
}

func runRename(id string, titleWords []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := s.EditTitle(context.Background(), id, strings.Join(titleWords, " ")); err != nil {
		return err
	}
	fmt.Printf("renamed topic %s\n", id)
	return nil
}

func runRm(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := s.DeleteTopic(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("deleted topic %s\n", id)
	return nil
}

func runResourceAdd(id string, textWords []string, imageURI, docURI, docName, docMime string, docSize int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	var r topic.Resource
	switch {
	case imageURI != "":
		r = topic.Image(imageURI)
	case docURI != "":
		if docName == "" {
			docName = docURI
		}
		r = topic.Document(docURI, docName, docMime, docSize)
	default:
		r = topic.Text(strings.Join(textWords, " "))
	}

	if err := s.AddResource(context.Background(), id, r); err != nil {
		return err
	}
	fmt.Printf("added resource to topic %s\n", id)
	return nil
}

func runResourceEdit(id, oldText, newText string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := s.EditResource(context.Background(), id, topic.Text(oldText), topic.Text(newText)); err != nil {
		return err
	}
	fmt.Printf("updated resource on topic %s\n", id)
	return nil
}

func runResourceRm(id, text string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := s.DeleteResource(context.Background(), id, topic.Text(text)); err != nil {
		return err
	}
	fmt.Printf("removed resource from topic %s\n", id)
	return nil
}

// formatReviewDate renders a date the way schedules are displayed and
// stored, e.g. "5 March, 2025".
func formatReviewDate(t time.Time) string {
	return fmt.Sprintf("%d %s, %d", t.Day(), t.Month().String(), t.Year())
}

func runSchedule(id, on, at string, noEvent bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("topic %s: %w", id, store.ErrTopicNotFound)
	}

	day := time.Now()
	if on != "" {
		day, err = time.Parse("2006-01-02", on)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", on, err)
		}
	}
	date := formatReviewDate(day)

	if !noEvent {
		cal, err := calendar.OpenLocal(cfg.Calendar.Path)
		if err != nil {
			return err
		}
		defer cal.Close()

		calendars, err := cal.Calendars(context.Background())
		if err != nil {
			return err
		}
		if len(calendars) == 0 {
			return fmt.Errorf("no calendars available")
		}

		// Review slot: 9:00 for an hour.
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
		eventID, err := cal.CreateEvent(context.Background(), calendars[0].ID, calendar.Event{
			Title:     "Study: " + t.Title,
			Notes:     "Review your learning resources for " + t.Title,
			StartDate: start,
			EndDate:   start.Add(time.Hour),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "calendar event %s created\n", eventID)
	}

	if err := s.Schedule(context.Background(), id, date, at); err != nil {
		return err
	}
	fmt.Printf("%s scheduled for %s\n", t.Title, date)
	return nil
}

func runUnschedule(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := s.Unschedule(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("unscheduled topic %s\n", id)
	return nil
}

func runScheduled(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	// Read repair: pull in any edits made to primary since scheduling.
	if err := s.Reconcile(context.Background()); err != nil {
		return err
	}
	scheduled := s.Scheduled()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scheduled)
	}

	if len(scheduled) == 0 {
		fmt.Println("no scheduled topics")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATE\tTIME\tRESOURCES")
	for _, t := range scheduled {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", t.ID, t.Title, t.ScheduledDate, t.ScheduledTime, len(t.Resources))
	}
	return w.Flush()
}

func runSearch(queryWords []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	query := strings.Join(queryWords, " ")
	matches := search.Search(s.Topics(), query)

	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, m := range matches {
		fmt.Printf("%s (%s)\n", renderHighlight(m.Topic.Title, query), m.Topic.ID)
		for _, r := range m.Resources {
			fmt.Println("  " + renderHighlight(r.DisplayString(), query))
		}
	}
	return nil
}

// renderHighlight marks matched spans with brackets for terminal output.
func renderHighlight(text, query string) string {
	var b strings.Builder
	for _, seg := range search.Highlight(text, query) {
		if seg.Match {
			b.WriteString("[" + seg.Text + "]")
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func runExport(id, format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("topic %s: %w", id, store.ErrTopicNotFound)
	}

	var data []byte
	switch format {
	case "json":
		data, err = export.JSON(t)
	case "pdf":
		_, err = export.PDF(t)
	case "docx":
		_, err = export.DOCX(t)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return err
	}

	sharer := share.NewFileSharer(cfg.Export.Dir)
	path, err := sharer.Share(export.FileName(t, format), "application/json", data)
	if err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", t.Title, path)
	return nil
}

func runSuggest(id string, save bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("topic %s: %w", id, store.ErrTopicNotFound)
	}

	suggester := buildSuggester(cfg)
	if suggester == nil {
		return errors.New("no suggestion source configured (set suggest.base_url or suggest.feeds)")
	}

	fmt.Fprintf(os.Stderr, "fetching resources for %s...\n", t.Title)
	content, err := suggester.FetchResources(context.Background(), t.Title)
	if err != nil {
		return err
	}

	for _, a := range content.Articles {
		fmt.Printf("article  %.0f%%  %s\n         %s\n", a.Score*100, a.Title, a.Link)
	}
	for _, v := range content.Videos {
		fmt.Printf("video    %s\n         %s\n", v.Title, v.Href)
	}
	for _, img := range content.Images {
		fmt.Printf("image    %s\n         %s\n", img.Title, img.Image)
	}

	if save {
		if err := s.SaveBundle(context.Background(), id, store.DefaultBundleTitle, content); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved to topic %s as %q\n", id, store.DefaultBundleTitle)
	}
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	s, kv, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	srv := server.New(s, buildSuggester(cfg), port)
	return srv.ListenAndServe()
}
