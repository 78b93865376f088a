package frontmatter

import "testing"

const sampleDoc = `---
item: 3
title: "Add caching layer"
status: in_progress
custom_key: kept as-is
---

# Work Item 3: Add caching layer

## Goal
`

func TestDecode_SplitsBlockAndBody(t *testing.T) {
	doc := Decode(sampleDoc)
	if !doc.HasBlock() {
		t.Fatal("expected a metadata block")
	}
	if got, ok := doc.Get("status"); !ok || got != "in_progress" {
		t.Errorf("expected status in_progress, got %q (ok=%v)", got, ok)
	}
	if got, ok := doc.Get("item"); !ok || got != "3" {
		t.Errorf("expected item 3, got %q (ok=%v)", got, ok)
	}
	if doc.Body == "" || doc.Body[0] != '\n' {
		t.Errorf("expected body to start with the blank line after the block")
	}
}

func TestDecode_NoMarker(t *testing.T) {
	text := "# Just a heading\n\nNo metadata here.\n"
	doc := Decode(text)
	if doc.HasBlock() {
		t.Error("expected no metadata block")
	}
	if doc.Body != text {
		t.Errorf("expected whole text as body, got %q", doc.Body)
	}
	if doc.Encode() != text {
		t.Errorf("expected Encode to return the text unchanged")
	}
}

func TestDecode_UnterminatedBlock(t *testing.T) {
	text := "---\nitem: 3\n\n# No closing marker\n"
	doc := Decode(text)
	if doc.HasBlock() {
		t.Error("expected unterminated block to be treated as body")
	}
	if doc.Encode() != text {
		t.Errorf("expected byte-for-byte round-trip of unterminated block")
	}
}

func TestEncode_RoundTripUnmodified(t *testing.T) {
	doc := Decode(sampleDoc)
	if got := doc.Encode(); got != sampleDoc {
		t.Errorf("expected byte-for-byte round-trip, got:\n%s", got)
	}
}

func TestSet_UpdatesInPlace(t *testing.T) {
	doc := Decode(sampleDoc)
	doc.Set("status", "done")

	if got, _ := doc.Get("status"); got != "done" {
		t.Errorf("expected status done, got %q", got)
	}
	// Unrelated keys survive.
	if got, _ := doc.Get("custom_key"); got != "kept as-is" {
		t.Errorf("expected custom_key preserved, got %q", got)
	}
}

func TestSet_AppendsMissingKey(t *testing.T) {
	doc := Decode(sampleDoc)
	doc.Set("hours", 2.5)
	if got, ok := doc.Get("hours"); !ok || got != "2.5" {
		t.Errorf("expected hours 2.5, got %q (ok=%v)", got, ok)
	}
}

func TestSet_NilWritesNull(t *testing.T) {
	doc := Decode(sampleDoc)
	doc.Set("completed", nil)
	if got, _ := doc.Get("completed"); got != "null" {
		t.Errorf("expected null, got %q", got)
	}
}

func TestSet_QuotesAmbiguousStrings(t *testing.T) {
	doc := Decode(sampleDoc)
	doc.Set("block_reason", "waiting: upstream #42")
	if got, _ := doc.Get("block_reason"); got != `"waiting: upstream #42"` {
		t.Errorf("expected quoted value, got %q", got)
	}
	doc.Set("plain", "no special chars")
	if got, _ := doc.Get("plain"); got != "no special chars" {
		t.Errorf("expected unquoted value, got %q", got)
	}
}

func TestUnmarshal_TypedRead(t *testing.T) {
	var meta struct {
		Item   int    `yaml:"item"`
		Title  string `yaml:"title"`
		Status string `yaml:"status"`
	}
	doc := Decode(sampleDoc)
	if err := doc.Unmarshal(&meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Item != 3 {
		t.Errorf("expected item 3, got %d", meta.Item)
	}
	if meta.Title != "Add caching layer" {
		t.Errorf("expected title, got %q", meta.Title)
	}
	if meta.Status != "in_progress" {
		t.Errorf("expected status in_progress, got %q", meta.Status)
	}
}
