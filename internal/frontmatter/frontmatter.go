// Package frontmatter reads and writes the structured metadata block
// embedded at the top of a work item document.
//
// The block is delimited by "---" marker lines at the very start of the
// document. The codec is line-preserving: keys it does not recognize pass
// through re-encoding verbatim, and an unmodified document round-trips
// byte-for-byte. Typed reads go through yaml.v3.
package frontmatter

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Marker delimits the metadata block.
const Marker = "---"

// Document is a decoded work item document: the metadata block (kept as
// raw lines so unknown keys survive re-encoding) plus the narrative body.
type Document struct {
	hasBlock bool
	lines    []string
	Body     string
}

// Decode splits a document into its metadata block and body. A document
// without a leading marker line yields an empty metadata block and the
// whole text as body; this is never an error, since documents may predate
// metadata support.
func Decode(text string) *Document {
	if !strings.HasPrefix(text, Marker+"\n") {
		return &Document{Body: text}
	}

	rest := text[len(Marker)+1:]
	end := strings.Index(rest, "\n"+Marker+"\n")
	if end < 0 {
		// Unterminated block: treat the whole document as body.
		return &Document{Body: text}
	}

	block := rest[:end]
	body := rest[end+len(Marker)+2:]

	var lines []string
	if block != "" {
		lines = strings.Split(block, "\n")
	}
	return &Document{hasBlock: true, lines: lines, Body: body}
}

// Encode reassembles the document. Encode(Decode(text)) == text for any
// text when no field was modified in between.
func (d *Document) Encode() string {
	if !d.hasBlock {
		return d.Body
	}
	var b strings.Builder
	b.WriteString(Marker + "\n")
	for _, line := range d.lines {
		b.WriteString(line + "\n")
	}
	b.WriteString(Marker + "\n")
	b.WriteString(d.Body)
	return b.String()
}

// HasBlock reports whether the document carries a metadata block.
func (d *Document) HasBlock() bool { return d.hasBlock }

// Get returns the raw scalar value of a top-level key, without YAML
// interpretation beyond trimming.
func (d *Document) Get(key string) (string, bool) {
	prefix := key + ":"
	for _, line := range d.lines {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

// Set updates a top-level key in place, or appends it when missing. A
// document without a block gains one. Keys the document already carries
// in other lines are left untouched.
func (d *Document) Set(key string, value any) {
	line := key + ": " + formatScalar(value)
	prefix := key + ":"
	for i, existing := range d.lines {
		if strings.HasPrefix(existing, prefix) {
			d.lines[i] = line
			return
		}
	}
	d.lines = append(d.lines, line)
	d.hasBlock = true
}

// Unmarshal parses the metadata block into out via yaml.v3. Fields the
// caller's schema does not declare are ignored here but still preserved
// by Encode.
func (d *Document) Unmarshal(out any) error {
	if !d.hasBlock {
		return nil
	}
	block := strings.Join(d.lines, "\n")
	if err := yaml.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("parsing front-matter: %w", err)
	}
	return nil
}

// formatScalar renders a value the way the block stores scalars: null for
// nil, bare numbers and booleans, and strings quoted only when YAML would
// otherwise misread them.
func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if needsQuoting(v) {
			return strconv.Quote(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func needsQuoting(s string) bool {
	if s == "" || s == "null" || s == "true" || s == "false" {
		return true
	}
	if strings.ContainsAny(s, ":#\"'\n") {
		return true
	}
	return s != strings.TrimSpace(s)
}
