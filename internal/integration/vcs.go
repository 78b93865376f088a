// Package integration wraps the external collaborators the engine talks
// to: the version-control binary invoked as a subprocess.
package integration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// VcsError reports a failed interaction with the version-control binary.
// Partial marks the local-tag-created-but-push-failed case: the local
// marker is valid and useful, so the caller reports it as a partial
// success instead of rolling anything back.
type VcsError struct {
	Op      string // "status", "tag", "push"
	Partial bool
	Detail  string
	Err     error
}

func (e *VcsError) Error() string {
	msg := fmt.Sprintf("vcs %s failed", e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *VcsError) Unwrap() error { return e.Err }

// VcsClient is the narrow interface over the version-control binary. A
// real subprocess implementation and an in-memory fake both satisfy it so
// the state machine never invokes processes directly.
type VcsClient interface {
	IsClean(ctx context.Context) (bool, error)
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote, name string) error
}

// gitClient implements VcsClient by shelling out to git.
type gitClient struct {
	dir string
}

// NewGitClient creates a VcsClient that runs git in the given directory.
func NewGitClient(dir string) VcsClient {
	return &gitClient{dir: dir}
}

func (c *gitClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", c.dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("git %s timed out", args[0])
	}
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// IsClean reports whether the working tree has no staged or unstaged
// changes.
func (c *gitClient) IsClean(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, &VcsError{Op: "status", Err: err}
	}
	return strings.TrimSpace(out) == "", nil
}

// Tag creates an annotated tag.
func (c *gitClient) Tag(ctx context.Context, name, message string) error {
	if _, err := c.run(ctx, "tag", "-a", name, "-m", message); err != nil {
		return &VcsError{Op: "tag", Detail: name, Err: err}
	}
	return nil
}

// Push publishes a tag to the remote.
func (c *gitClient) Push(ctx context.Context, remote, name string) error {
	if _, err := c.run(ctx, "push", remote, name); err != nil {
		return &VcsError{Op: "push", Partial: true, Detail: name, Err: err}
	}
	return nil
}

// TagPublisher creates the annotated completion marker for a finished
// work item and pushes it to the configured remote. It implements
// core.TagPublisher.
type TagPublisher struct {
	vcs     VcsClient
	prefix  string
	remote  string
	push    bool
	timeout time.Duration
}

// NewTagPublisher wires a TagPublisher over the given client. timeout
// bounds every subprocess call; expiry is a hard failure, never retried.
func NewTagPublisher(vcs VcsClient, prefix, remote string, push bool, timeout time.Duration) *TagPublisher {
	return &TagPublisher{vcs: vcs, prefix: prefix, remote: remote, push: push, timeout: timeout}
}

// TagName builds the deterministic marker name for a work item:
// {prefix}-{id}-{slug}.
func (p *TagPublisher) TagName(id int, slug string) string {
	if slug == "" {
		return fmt.Sprintf("%s-%d", p.prefix, id)
	}
	return fmt.Sprintf("%s-%d-%s", p.prefix, id, slug)
}

// CheckClean fails with a *VcsError when the working tree is dirty, so a
// mismatched state is never tagged.
func (p *TagPublisher) CheckClean() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	clean, err := p.vcs.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return &VcsError{Op: "status", Detail: "working tree is dirty; commit or stash changes before completing"}
	}
	return nil
}

// PublishResult mirrors core.PublishResult without importing core.
type PublishResult struct {
	Tag    string
	Pushed bool
}

// Publish creates the annotated tag and pushes it. Local tag creation and
// remote publication are separate failure domains: a push failure returns
// the result together with a partial *VcsError and leaves the local tag in
// place.
func (p *TagPublisher) Publish(id int, title string) (*PublishResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	name := p.TagName(id, slugify(title))
	message := fmt.Sprintf("Work item %d: %s", id, title)

	if err := p.vcs.Tag(ctx, name, message); err != nil {
		return nil, err
	}
	result := &PublishResult{Tag: name}
	if !p.push {
		return result, nil
	}
	if err := p.vcs.Push(ctx, p.remote, name); err != nil {
		return result, err
	}
	result.Pushed = true
	return result, nil
}

// slugify lowercases ASCII letters/digits and collapses everything else
// into single hyphens, keeping tag names shell-safe.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
