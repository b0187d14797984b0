package tgen

import (
	"bytes"
	"testing"
)

func TestMetaRoundTrip(t *testing.T) {
	m := Meta{Entries: map[int]string{0: "fallback case", 3: "hand-tuned for member access"}}

	var buf bytes.Buffer
	if err := SaveMeta(&buf, m); err != nil {
		t.Fatal(err)
	}

	got, err := LoadMeta(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 2 || got.Entries[0] != "fallback case" || got.Entries[3] != "hand-tuned for member access" {
		t.Fatalf("got %+v", got.Entries)
	}
}

func TestLoadMetaEmptyIsEmptyMap(t *testing.T) {
	m, err := LoadMeta(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	if m.Entries == nil || len(m.Entries) != 0 {
		t.Fatalf("got %+v, want empty non-nil map", m.Entries)
	}
}
