package topic

import (
	"encoding/json"
	"fmt"
)

// ResourceKind identifies which variant a Resource holds.
type ResourceKind string

const (
	KindText     ResourceKind = "text"
	KindImage    ResourceKind = "image"
	KindDocument ResourceKind = "document"
	KindBundle   ResourceKind = "collapsible"
)

// Resource is one learning-material entry attached to a Topic. Exactly one
// variant is populated, selected by Kind: free text (which may or may not be
// URL-like, see LooksLikeURL), an image location, a picked document, or a
// collapsible bundle of fetched resources.
type Resource struct {
	Kind ResourceKind

	// KindText
	Text string

	// KindImage and KindDocument
	URI string

	// KindDocument
	Name      string
	MimeType  string
	SizeBytes int64

	// KindBundle
	Title   string
	Content BundleContent
}

// BundleContent is the payload of a collapsible bundle: a snapshot of
// articles, videos and images fetched for a topic.
type BundleContent struct {
	Articles []Article     `json:"articles"`
	Videos   []Video       `json:"videos"`
	Images   []BundleImage `json:"images"`
}

// Article is a suggested article with a 0..1 relevance score.
type Article struct {
	Link    string  `json:"link"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	Title   string  `json:"title"`
}

// Video is a suggested video.
type Video struct {
	Href       string `json:"href"`
	Body       string `json:"body"`
	Title      string `json:"title"`
	UploadTime string `json:"upload_time"`
}

// BundleImage is a suggested image.
type BundleImage struct {
	Image string `json:"image"`
	Title string `json:"title"`
}

// Text returns a plain-text resource.
func Text(s string) Resource {
	return Resource{Kind: KindText, Text: s}
}

// Image returns an image-reference resource.
func Image(uri string) Resource {
	return Resource{Kind: KindImage, URI: uri}
}

// Document returns a picked-file resource.
func Document(uri, name, mimeType string, sizeBytes int64) Resource {
	return Resource{Kind: KindDocument, URI: uri, Name: name, MimeType: mimeType, SizeBytes: sizeBytes}
}

// Bundle returns a collapsible bundle resource.
func Bundle(title string, content BundleContent) Resource {
	return Resource{Kind: KindBundle, Title: title, Content: content}
}

// DisplayString is the text a resource is listed and searched by. Images
// have no text representation and return "".
func (r Resource) DisplayString() string {
	switch r.Kind {
	case KindText:
		return r.Text
	case KindDocument:
		return r.Name
	case KindBundle:
		return r.Title
	}
	return ""
}

// IsEmpty reports whether the variant's identifying field is blank.
func (r Resource) IsEmpty() bool {
	switch r.Kind {
	case KindText:
		return r.Text == ""
	case KindImage:
		return r.URI == ""
	case KindDocument:
		return r.URI == ""
	case KindBundle:
		return r.Title == ""
	}
	return true
}

// Equal reports value equality between two resources.
func (r Resource) Equal(o Resource) bool {
	if r.Kind != o.Kind {
		return false
	}
	switch r.Kind {
	case KindText:
		return r.Text == o.Text
	case KindImage:
		return r.URI == o.URI
	case KindDocument:
		return r.URI == o.URI && r.Name == o.Name && r.MimeType == o.MimeType && r.SizeBytes == o.SizeBytes
	case KindBundle:
		return r.Title == o.Title && r.Content.Equal(o.Content)
	}
	return false
}

// Equal reports value equality between two bundle payloads.
func (c BundleContent) Equal(o BundleContent) bool {
	if len(c.Articles) != len(o.Articles) || len(c.Videos) != len(o.Videos) || len(c.Images) != len(o.Images) {
		return false
	}
	for i := range c.Articles {
		if c.Articles[i] != o.Articles[i] {
			return false
		}
	}
	for i := range c.Videos {
		if c.Videos[i] != o.Videos[i] {
			return false
		}
	}
	for i := range c.Images {
		if c.Images[i] != o.Images[i] {
			return false
		}
	}
	return true
}

// Clone deep-copies the bundle payload.
func (c BundleContent) Clone() BundleContent {
	c.Articles = append([]Article(nil), c.Articles...)
	c.Videos = append([]Video(nil), c.Videos...)
	c.Images = append([]BundleImage(nil), c.Images...)
	return c
}

// Clone deep-copies the resource.
func (r Resource) Clone() Resource {
	r.Content = r.Content.Clone()
	return r
}

// resourceJSON is the tagged on-disk shape for non-text resources.
type resourceJSON struct {
	Type     string         `json:"type"`
	URI      string         `json:"uri,omitempty"`
	Name     string         `json:"name,omitempty"`
	MimeType string         `json:"mimeType,omitempty"`
	Size     int64          `json:"size,omitempty"`
	Title    string         `json:"title,omitempty"`
	Content  *BundleContent `json:"content,omitempty"`
}

// MarshalJSON writes text resources as bare JSON strings and all other
// variants as objects with a "type" tag, matching the stored format.
func (r Resource) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindText:
		return json.Marshal(r.Text)
	case KindImage:
		return json.Marshal(resourceJSON{Type: string(KindImage), URI: r.URI})
	case KindDocument:
		return json.Marshal(resourceJSON{
			Type:     string(KindDocument),
			URI:      r.URI,
			Name:     r.Name,
			MimeType: r.MimeType,
			Size:     r.SizeBytes,
		})
	case KindBundle:
		content := r.Content.Clone()
		return json.Marshal(resourceJSON{Type: string(KindBundle), Title: r.Title, Content: &content})
	}
	return nil, fmt.Errorf("marshal resource: unknown kind %q", r.Kind)
}

// UnmarshalJSON accepts bare strings (legacy text resources) and tagged
// objects. Untagged or unknown object shapes are rejected so ambiguous data
// cannot slip past the storage boundary.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Text(s)
		return nil
	}

	var raw resourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal resource: %w", err)
	}

	switch ResourceKind(raw.Type) {
	case KindImage:
		*r = Image(raw.URI)
	case KindDocument:
		*r = Document(raw.URI, raw.Name, raw.MimeType, raw.Size)
	case KindBundle:
		var content BundleContent
		if raw.Content != nil {
			content = *raw.Content
		}
		*r = Bundle(raw.Title, content)
	case "":
		return fmt.Errorf("unmarshal resource: missing type tag")
	default:
		return fmt.Errorf("unmarshal resource: unknown type %q", raw.Type)
	}
	return nil
}

// Topic is the primary organizational unit: a named, ordered list of
// resources. ID is the sole identity key; it is assigned at creation and
// never changes or gets reused.
type Topic struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Resources   []Resource `json:"resources"`
	IsScheduled bool       `json:"isScheduled,omitempty"`
}

// Clone deep-copies the topic so callers cannot alias store-owned slices.
func (t Topic) Clone() Topic {
	resources := make([]Resource, len(t.Resources))
	for i, r := range t.Resources {
		resources[i] = r.Clone()
	}
	t.Resources = resources
	return t
}

// Scheduled is a projection of a Topic at schedule time plus its scheduling
// metadata. Title and resources are expected to track the primary topic
// (see the store's Reconcile); date and time are independent of it.
type Scheduled struct {
	Topic
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
}

// Clone deep-copies the scheduled projection.
func (s Scheduled) Clone() Scheduled {
	s.Topic = s.Topic.Clone()
	return s
}
