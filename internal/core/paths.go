package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Status directories under the work dir, in lifecycle order. The directory
// an item's document lives in is the visible side effect of a transition;
// it must never disagree with the front-matter status field.
const (
	FolderBacklog    = "0-backlog"
	FolderTodo       = "1-todo"
	FolderInProgress = "2-in-progress"
	FolderDone       = "3-done"
	FolderBlocked    = "4-blocked"
	FolderAbandoned  = "5-abandoned"
	FolderArchived   = "6-archived"
)

// StatusFolders lists every status directory, in order.
var StatusFolders = []string{
	FolderBacklog, FolderTodo, FolderInProgress,
	FolderDone, FolderBlocked, FolderAbandoned, FolderArchived,
}

// Name suffixes appended before the .md extension when an item (or its
// group folder) reaches the matching state.
const (
	SuffixDone    = "--done"
	SuffixAborted = "--aborted"
	SuffixBlocked = "--blocked"
)

// StandaloneDir holds completed/aborted items that belong to no group.
const StandaloneDir = "_standalone"

// GroupFile is the group's own document inside its folder.
const GroupFile = "_group.md"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses every non-alphanumeric run into
// a single hyphen: "Add caching layer" -> "add-caching-layer".
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// Layout resolves file-system locations for work item documents and group
// folders under the work tree root.
type Layout struct {
	basePath string
	workDir  string
}

// NewLayout creates a Layout rooted at basePath with status directories
// under workDir (typically "work").
func NewLayout(basePath, workDir string) Layout {
	return Layout{basePath: basePath, workDir: workDir}
}

// StatusDir returns the absolute path of a status directory.
func (l Layout) StatusDir(folder string) string {
	return filepath.Join(l.basePath, l.workDir, folder)
}

// Abs converts a work-tree-relative location path to an absolute one.
func (l Layout) Abs(rel string) string {
	return filepath.Join(l.basePath, rel)
}

// Rel converts an absolute path under the work tree back to the relative
// form stored in the registry.
func (l Layout) Rel(abs string) string {
	rel, err := filepath.Rel(l.basePath, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// ItemFileName builds the canonical document name for a work item:
// item-03_add-caching-layer.md.
func ItemFileName(id int, title string) string {
	return fmt.Sprintf("item-%02d_%s.md", id, Slugify(title))
}

// GroupDirName builds the canonical folder name for a group:
// group-01_user-management.
func GroupDirName(id int, title string) string {
	return fmt.Sprintf("group-%02d_%s", id, Slugify(title))
}

// WithSuffix inserts a status suffix before the extension (or at the end
// of a directory name): item-03_x.md -> item-03_x--done.md.
func WithSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	if ext == ".md" {
		return strings.TrimSuffix(name, ext) + suffix + ext
	}
	return name + suffix
}

// StripSuffix removes a status suffix inserted by WithSuffix.
func StripSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	if ext == ".md" {
		base := strings.TrimSuffix(name, ext)
		return strings.TrimSuffix(base, suffix) + ext
	}
	return strings.TrimSuffix(name, suffix)
}
