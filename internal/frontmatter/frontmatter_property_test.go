package frontmatter

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Feature: lane, Property 1: Byte-Identical Round-Trip
// Encode(Decode(text)) == text for any document, with or without a
// metadata block, as long as no field was modified in between.
func TestProperty_RoundTripIsByteIdentical(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hasBlock := rapid.Bool().Draw(rt, "hasBlock")

		var b strings.Builder
		if hasBlock {
			b.WriteString(Marker + "\n")
			n := rapid.IntRange(0, 10).Draw(rt, "n")
			for i := 0; i < n; i++ {
				key := rapid.StringMatching(`[a-z_]{1,12}`).Draw(rt, "key")
				value := rapid.StringMatching(`[a-zA-Z0-9 ._-]{0,24}`).Draw(rt, "value")
				fmt.Fprintf(&b, "%s: %s\n", key, value)
			}
			b.WriteString(Marker + "\n")
		}
		body := rapid.StringMatching(`[a-zA-Z0-9 #\n._-]{0,200}`).Draw(rt, "body")
		// A body starting with the marker line would be indistinguishable
		// from a block.
		if !hasBlock && strings.HasPrefix(body, Marker+"\n") {
			body = " " + body
		}
		b.WriteString(body)

		text := b.String()
		if got := Decode(text).Encode(); got != text {
			t.Fatalf("round-trip mismatch:\n got %q\nwant %q", got, text)
		}
	})
}

// Feature: lane, Property 2: Set Then Get Observes the Written Value
// After Set(key, v), Get(key) returns the formatted scalar and every
// other key's raw line is unchanged.
func TestProperty_SetPreservesOtherKeys(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		doc := Decode("---\nalpha: one\nbeta: two\ngamma: three\n---\n\nbody\n")
		key := rapid.SampledFrom([]string{"alpha", "beta", "gamma", "delta"}).Draw(rt, "key")
		value := rapid.StringMatching(`[a-z0-9_-]{1,16}`).Draw(rt, "value")

		doc.Set(key, value)

		if got, ok := doc.Get(key); !ok || got != value {
			t.Fatalf("expected %s=%q after Set, got %q (ok=%v)", key, value, got, ok)
		}
		for _, other := range []string{"alpha", "beta", "gamma"} {
			if other == key {
				continue
			}
			if _, ok := doc.Get(other); !ok {
				t.Fatalf("expected %s to survive Set(%s)", other, key)
			}
		}
	})
}
