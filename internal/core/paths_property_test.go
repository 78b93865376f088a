package core

import (
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var slugShape = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

// Feature: lane, Property 1: Slugs Are Always Path- and Tag-Safe
// Slugify never produces anything but lowercase alphanumerics joined by
// single interior hyphens, for arbitrary input.
func TestProperty_SlugifyShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		title := rapid.String().Draw(rt, "title")
		slug := Slugify(title)
		if !slugShape.MatchString(slug) {
			t.Fatalf("Slugify(%q) = %q breaks the slug shape", title, slug)
		}
	})
}

// Feature: lane, Property 2: Suffixes Invert
// StripSuffix(WithSuffix(name, s), s) == name for canonical item names.
func TestProperty_SuffixRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 9999).Draw(rt, "id")
		title := rapid.StringMatching(`[A-Za-z0-9 ]{1,30}`).Draw(rt, "title")
		if Slugify(title) == "" {
			t.Skip("title slugs to nothing")
		}
		name := ItemFileName(id, title)
		suffix := rapid.SampledFrom([]string{SuffixDone, SuffixAborted, SuffixBlocked}).Draw(rt, "suffix")

		suffixed := WithSuffix(name, suffix)
		if !strings.HasSuffix(suffixed, suffix+".md") {
			t.Fatalf("expected %q to end with %s.md", suffixed, suffix)
		}
		if got := StripSuffix(suffixed, suffix); got != name {
			t.Fatalf("expected round-trip to %q, got %q", name, got)
		}
	})
}
