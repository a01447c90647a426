package topic

import (
	"encoding/json"
	"testing"
)

func TestResourceJSONRoundTrip(t *testing.T) {
	resources := []Resource{
		Text("plain note"),
		Text("https://github.com"),
		Image("file:///pics/graph.png"),
		Document("file:///docs/clrs.pdf", "clrs.pdf", "application/pdf", 12345),
		Bundle("RESOURCES FROM INTERNET", BundleContent{
			Articles: []Article{{Link: "https://a", Score: 0.85, Summary: "s", Title: "A"}},
			Videos:   []Video{{Href: "https://v", Body: "b", Title: "V", UploadTime: "2024-01-01T00:00:00Z"}},
			Images:   []BundleImage{{Image: "https://i", Title: "I"}},
		}),
	}

	data, err := json.Marshal(resources)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded []Resource
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded) != len(resources) {
		t.Fatalf("round trip length %d, want %d", len(decoded), len(resources))
	}
	for i := range resources {
		if !decoded[i].Equal(resources[i]) {
			t.Errorf("resource %d changed across round trip:\n got %+v\nwant %+v", i, decoded[i], resources[i])
		}
	}
}

func TestTextResourceMarshalsAsBareString(t *testing.T) {
	data, err := json.Marshal(Text("a note"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"a note"` {
		t.Errorf("text resource marshaled as %s, want bare string", data)
	}
}

func TestUnmarshalRejectsUntaggedObjects(t *testing.T) {
	cases := []string{
		`{"uri":"file:///x","name":"x"}`,
		`{"type":"mystery","uri":"file:///x"}`,
	}
	for _, raw := range cases {
		var r Resource
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			t.Errorf("unmarshal %s succeeded, want rejection", raw)
		}
	}
}

func TestResourceEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Resource
		want bool
	}{
		{"same text", Text("x"), Text("x"), true},
		{"different text", Text("x"), Text("y"), false},
		{"text vs document", Text("x"), Document("x", "x", "", 0), false},
		{"same document", Document("u", "n", "m", 1), Document("u", "n", "m", 1), true},
		{"document size differs", Document("u", "n", "m", 1), Document("u", "n", "m", 2), false},
		{
			"same bundle",
			Bundle("B", BundleContent{Articles: []Article{{Link: "l"}}}),
			Bundle("B", BundleContent{Articles: []Article{{Link: "l"}}}),
			true,
		},
		{
			"bundle content differs",
			Bundle("B", BundleContent{Articles: []Article{{Link: "l"}}}),
			Bundle("B", BundleContent{Articles: []Article{{Link: "other"}}}),
			false,
		},
	}
	for _, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDisplayString(t *testing.T) {
	cases := []struct {
		r    Resource
		want string
	}{
		{Text("note"), "note"},
		{Document("u", "paper.pdf", "application/pdf", 1), "paper.pdf"},
		{Bundle("B", BundleContent{}), "B"},
		{Image("file:///x.png"), ""},
	}
	for _, tc := range cases {
		if got := tc.r.DisplayString(); got != tc.want {
			t.Errorf("DisplayString(%v) = %q, want %q", tc.r.Kind, got, tc.want)
		}
	}
}

func TestTopicCloneIsDeep(t *testing.T) {
	original := Topic{
		ID:    "1",
		Title: "T",
		Resources: []Resource{
			Bundle("B", BundleContent{Articles: []Article{{Title: "A"}}}),
		},
	}

	clone := original.Clone()
	clone.Resources[0].Content.Articles[0].Title = "mutated"

	if original.Resources[0].Content.Articles[0].Title != "A" {
		t.Error("mutating a clone leaked into the original")
	}
}
