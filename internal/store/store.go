// Package store is the single authority over the two persisted topic
// collections: primary (all topics) and scheduled (topics with a review
// date). Every mutation goes through it, rewrites the full collection it
// touched, and keeps the two collections in agreement.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elonfeng/ressa/pkg/topic"
)

// Storage keys, kept bit-for-bit compatible with existing data.
const (
	primaryKey   = "@learning_resources"
	scheduledKey = "@scheduled_topics"
)

// DefaultBundleTitle names the bundle a topic's fetched resources are saved
// under. SaveBundle replaces an existing bundle with the same title.
const DefaultBundleTitle = "RESOURCES FROM INTERNET"

var (
	ErrEmptyTitle    = errors.New("title is empty")
	ErrEmptyResource = errors.New("resource is empty")
	ErrTopicNotFound = errors.New("topic not found")
)

// Store owns the in-memory collections and their persistence. Mutations are
// serialized by a mutex so rapid back-to-back calls cannot interleave
// against the same snapshot; each mutation persists before returning. On a
// persist failure the in-memory state keeps the optimistic update and the
// error surfaces to the caller.
type Store struct {
	mu        sync.Mutex
	kv        KV
	primary   []topic.Topic
	scheduled []topic.Scheduled
	lastID    int64
}

// New creates a Store over the given KV. Call Load before anything else.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Load populates the collections from storage. A missing primary key seeds
// one example topic and persists it. Read and decode failures are logged
// and leave the in-memory state at its prior default, so a corrupt blob
// degrades to an empty app rather than a crash.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, primaryKey)
	switch {
	case err != nil:
		log.Printf("load topics: %v", err)
	case !ok:
		s.primary = seedTopics()
		if err := s.persistPrimary(ctx); err != nil {
			return err
		}
	default:
		var topics []topic.Topic
		if err := json.Unmarshal([]byte(raw), &topics); err != nil {
			log.Printf("decode topics: %v", err)
		} else {
			for i := range topics {
				if topics[i].Resources == nil {
					topics[i].Resources = []topic.Resource{}
				}
			}
			s.primary = topics
		}
	}

	raw, ok, err = s.kv.Get(ctx, scheduledKey)
	switch {
	case err != nil:
		log.Printf("load scheduled topics: %v", err)
	case !ok:
		s.scheduled = nil
	default:
		var scheduled []topic.Scheduled
		if err := json.Unmarshal([]byte(raw), &scheduled); err != nil {
			log.Printf("decode scheduled topics: %v", err)
		} else {
			for i := range scheduled {
				if scheduled[i].Resources == nil {
					scheduled[i].Resources = []topic.Resource{}
				}
			}
			s.scheduled = scheduled
		}
	}

	return nil
}

func seedTopics() []topic.Topic {
	return []topic.Topic{{
		ID:    "1",
		Title: "This is an Example",
		Resources: []topic.Resource{
			topic.Text("Example Documentation"),
			topic.Text("https://github.com"),
		},
	}}
}

// Topics returns a deep copy of the primary collection.
func (s *Store) Topics() []topic.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]topic.Topic, len(s.primary))
	for i, t := range s.primary {
		out[i] = t.Clone()
	}
	return out
}

// Scheduled returns a deep copy of the scheduled collection.
func (s *Store) Scheduled() []topic.Scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]topic.Scheduled, len(s.scheduled))
	for i, t := range s.scheduled {
		out[i] = t.Clone()
	}
	return out
}

// Get returns the primary topic with the given id.
func (s *Store) Get(id string) (topic.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.primary[i].Clone(), true
	}
	return topic.Topic{}, false
}

// AddTopic creates a topic with a fresh id and no resources. Duplicate
// titles are permitted.
func (s *Store) AddTopic(ctx context.Context, title string) (topic.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return topic.Topic{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := topic.Topic{
		ID:        s.newID(),
		Title:     title,
		Resources: []topic.Resource{},
	}
	s.primary = append(s.primary, t)

	if err := s.persistPrimary(ctx); err != nil {
		return t.Clone(), err
	}
	return t.Clone(), nil
}

// EditTitle renames a primary topic. The scheduled snapshot is deliberately
// not touched here; Reconcile pulls the new title in.
func (s *Store) EditTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrTopicNotFound
	}
	s.primary[i].Title = title

	return s.persistPrimary(ctx)
}

// DeleteTopic removes a topic from primary and, in the same operation, its
// entry in scheduled. Unknown ids are a no-op.
func (s *Store) DeleteTopic(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.primary[:0]
	for _, t := range s.primary {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.primary = kept

	keptSched := s.scheduled[:0]
	for _, t := range s.scheduled {
		if t.ID != id {
			keptSched = append(keptSched, t)
		}
	}
	s.scheduled = keptSched

	if err := s.persistPrimary(ctx); err != nil {
		return err
	}
	return s.persistScheduled(ctx)
}

// AddResource appends a resource to the topic and, if the topic is
// scheduled, to its scheduled snapshot as well.
func (s *Store) AddResource(ctx context.Context, topicID string, r topic.Resource) error {
	r = normalizeResource(r)
	if r.IsEmpty() {
		return ErrEmptyResource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(topicID)
	if i < 0 {
		return ErrTopicNotFound
	}
	s.primary[i].Resources = append(s.primary[i].Resources, r.Clone())

	if j := s.scheduledIndexOf(topicID); j >= 0 {
		s.scheduled[j].Resources = append(s.scheduled[j].Resources, r.Clone())
		if err := s.persistPrimary(ctx); err != nil {
			return err
		}
		return s.persistScheduled(ctx)
	}
	return s.persistPrimary(ctx)
}

// EditResource replaces the first occurrence equal to old with updated,
// propagating identically to the scheduled snapshot if present. A missing
// occurrence is a silent no-op.
func (s *Store) EditResource(ctx context.Context, topicID string, old, updated topic.Resource) error {
	updated = normalizeResource(updated)
	if updated.IsEmpty() {
		return ErrEmptyResource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(topicID)
	if i < 0 {
		return ErrTopicNotFound
	}
	replaceFirst(s.primary[i].Resources, old, updated)

	if j := s.scheduledIndexOf(topicID); j >= 0 {
		replaceFirst(s.scheduled[j].Resources, old, updated)
		if err := s.persistPrimary(ctx); err != nil {
			return err
		}
		return s.persistScheduled(ctx)
	}
	return s.persistPrimary(ctx)
}

// DeleteResource removes every occurrence equal to r from the topic. The
// filter is by value, not index, so duplicate identical resources all go at
// once. Unknown topic ids are a no-op.
func (s *Store) DeleteResource(ctx context.Context, topicID string, r topic.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(topicID)
	if i < 0 {
		return nil
	}
	s.primary[i].Resources = filterOut(s.primary[i].Resources, r)

	if j := s.scheduledIndexOf(topicID); j >= 0 {
		s.scheduled[j].Resources = filterOut(s.scheduled[j].Resources, r)
		if err := s.persistPrimary(ctx); err != nil {
			return err
		}
		return s.persistScheduled(ctx)
	}
	return s.persistPrimary(ctx)
}

// SaveBundle attaches fetched resources to a topic as a single collapsible
// bundle. An existing bundle with the same title is replaced in place;
// otherwise the bundle is appended.
func (s *Store) SaveBundle(ctx context.Context, topicID, title string, content topic.BundleContent) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyResource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(topicID)
	if i < 0 {
		return ErrTopicNotFound
	}

	bundle := topic.Bundle(title, content.Clone())
	replaced := false
	for k, r := range s.primary[i].Resources {
		if r.Kind == topic.KindBundle && r.Title == title {
			s.primary[i].Resources[k] = bundle
			replaced = true
			break
		}
	}
	if !replaced {
		s.primary[i].Resources = append(s.primary[i].Resources, bundle)
	}

	return s.persistPrimary(ctx)
}

// Schedule upserts the topic's scheduled snapshot with the given date and
// optional time. Any prior entry with the same id is removed first, so the
// last write wins and scheduled never holds duplicates by id.
func (s *Store) Schedule(ctx context.Context, topicID, date, timeOfDay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(topicID)
	if i < 0 {
		return ErrTopicNotFound
	}
	s.primary[i].IsScheduled = true

	kept := s.scheduled[:0]
	for _, t := range s.scheduled {
		if t.ID != topicID {
			kept = append(kept, t)
		}
	}
	s.scheduled = append(kept, topic.Scheduled{
		Topic:         s.primary[i].Clone(),
		ScheduledDate: date,
		ScheduledTime: timeOfDay,
	})

	if err := s.persistPrimary(ctx); err != nil {
		return err
	}
	return s.persistScheduled(ctx)
}

// Unschedule removes the topic's scheduled entry and clears the primary
// topic's flag. Unknown ids are a no-op.
func (s *Store) Unschedule(ctx context.Context, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.scheduled[:0]
	for _, t := range s.scheduled {
		if t.ID != topicID {
			kept = append(kept, t)
		}
	}
	s.scheduled = kept

	if i := s.indexOf(topicID); i >= 0 {
		s.primary[i].IsScheduled = false
	}

	if err := s.persistPrimary(ctx); err != nil {
		return err
	}
	return s.persistScheduled(ctx)
}

// Reconcile overwrites each scheduled entry's title and resources with the
// primary topic's current values, preserving the scheduling date and time.
// Entries whose topic no longer exists in primary are left as stale
// snapshots.
func (s *Store) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.scheduled {
		j := s.indexOf(s.scheduled[i].ID)
		if j < 0 {
			continue
		}
		snapshot := s.primary[j].Clone()
		snapshot.IsScheduled = true
		s.scheduled[i].Topic = snapshot
	}

	return s.persistScheduled(ctx)
}

// newID returns a time-based id, bumped past the previous one so rapid
// calls within the clock's resolution stay unique.
func (s *Store) newID() string {
	id := time.Now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) indexOf(id string) int {
	for i := range s.primary {
		if s.primary[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) scheduledIndexOf(id string) int {
	for i := range s.scheduled {
		if s.scheduled[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistPrimary(ctx context.Context) error {
	if s.primary == nil {
		s.primary = []topic.Topic{}
	}
	data, err := json.Marshal(s.primary)
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}
	if err := s.kv.Set(ctx, primaryKey, string(data)); err != nil {
		return fmt.Errorf("persist topics: %w", err)
	}
	return nil
}

func (s *Store) persistScheduled(ctx context.Context) error {
	if s.scheduled == nil {
		s.scheduled = []topic.Scheduled{}
	}
	data, err := json.Marshal(s.scheduled)
	if err != nil {
		return fmt.Errorf("encode scheduled topics: %w", err)
	}
	if err := s.kv.Set(ctx, scheduledKey, string(data)); err != nil {
		return fmt.Errorf("persist scheduled topics: %w", err)
	}
	return nil
}

func normalizeResource(r topic.Resource) topic.Resource {
	if r.Kind == topic.KindText {
		r.Text = strings.TrimSpace(r.Text)
	}
	return r
}

func replaceFirst(resources []topic.Resource, old, updated topic.Resource) {
	for i := range resources {
		if resources[i].Equal(old) {
			resources[i] = updated.Clone()
			return
		}
	}
}

func filterOut(resources []topic.Resource, r topic.Resource) []topic.Resource {
	kept := resources[:0]
	for _, existing := range resources {
		if !existing.Equal(r) {
			kept = append(kept, existing)
		}
	}
	return kept
}
