package core

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/lane/internal/frontmatter"
	"github.com/valter-silva-au/lane/internal/fsops"
	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

// RetrospectiveHeading is the narrative section a work item document must
// contain before the item may be completed.
const RetrospectiveHeading = "## Retrospective"

// TagPublisher is the subset of the VCS integration the state machine
// needs. Defining it here keeps core independent of the integration
// package.
type TagPublisher interface {
	// CheckClean fails when the working tree has staged or unstaged
	// changes.
	CheckClean() error
	// Publish creates the completion tag and attempts to push it. A push
	// failure returns the result (Pushed=false) together with a partial
	// VCS error; the local tag stands.
	Publish(id int, title string) (*PublishResult, error)
}

// PublishResult reports what the tag publisher did.
type PublishResult struct {
	Tag    string
	Pushed bool
}

// TransitionRecorder receives one event per committed transition.
type TransitionRecorder interface {
	RecordTransition(entity string, id int, from, to string, note string)
}

// CompletionResult summarizes a successful complete transition.
type CompletionResult struct {
	Item *models.WorkItem
	// Publish is nil when the transition ran dry.
	Publish *PublishResult
	// PublishErr carries a partial-success push failure; the completion
	// itself has already been committed when it is set.
	PublishErr error
	// GroupCheck reports the member's group completion state, nil for
	// standalone items.
	GroupCheck *GroupCompletionStatus
}

// WorkItemManager validates and executes work item lifecycle transitions:
// planned -> in_progress -> {done | aborted}, with in_progress <-> blocked
// reversible and abort reachable from any non-terminal state.
//
// Every transition is validate-first: on a precondition failure a
// *ValidationError is returned and no file-system or registry side effect
// occurs. File mutations go through a fsops transaction; the registry is
// only written after the file moves commit, and the file moves are
// reversed if the registry write fails.
type WorkItemManager interface {
	Allocate(title string, groupID int, workType models.WorkType, dryRun bool) (*models.WorkItem, error)
	Start(id int, dryRun bool) (*models.WorkItem, error)
	Block(id int, reason string, dryRun bool) (*models.WorkItem, error)
	Resume(id int, dryRun bool) (*models.WorkItem, error)
	Complete(id int, dryRun bool) (*CompletionResult, error)
	Abort(id int, reason string, dryRun bool) (*models.WorkItem, error)
	Recover(id int, dryRun bool) (*models.WorkItem, error)
	Get(id int) (*models.WorkItem, error)
	List() ([]*models.WorkItem, error)
}

type workItemManager struct {
	layout Layout
	reg    storage.RegistryManager
	tags   TagPublisher
	events TransitionRecorder
	out    io.Writer
	now    func() time.Time
}

// NewWorkItemManager creates a WorkItemManager. tags and events may be nil
// when tagging or event recording is not wired. Dry-run previews are
// written to out.
func NewWorkItemManager(layout Layout, reg storage.RegistryManager, tags TagPublisher, events TransitionRecorder, out io.Writer) WorkItemManager {
	if out == nil {
		out = os.Stdout
	}
	return &workItemManager{
		layout: layout,
		reg:    reg,
		tags:   tags,
		events: events,
		out:    out,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Allocate assigns the next work item ID, writes the initial document into
// the planned location, and registers the item.
func (m *workItemManager) Allocate(title string, groupID int, workType models.WorkType, dryRun bool) (*models.WorkItem, error) {
	const op = "allocate-work-item"

	if strings.TrimSpace(title) == "" {
		return nil, validationErr(op, "", "title must not be empty")
	}
	if !workType.Valid() {
		return nil, validationErr(op, "", "unknown work type %q", workType)
	}

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	var group *models.Group
	if groupID != 0 {
		group = reg.Group(groupID)
		if group == nil {
			return nil, validationErr(op, "allocate-group", "group %d not found", groupID)
		}
		if group.Status == models.GroupDone || group.Status == models.GroupArchived {
			return nil, validationErr(op, "", "group %d is %s; items cannot be added", groupID, group.Status)
		}
	}

	now := m.now()
	item := &models.WorkItem{
		ID:        reg.NextWorkItemID,
		Title:     title,
		GroupID:   groupID,
		WorkType:  workType,
		Status:    models.StatusPlanned,
		CreatedAt: &now,
	}

	var dir string
	if group != nil {
		dir = m.layout.Abs(group.LocationPath)
	} else {
		dir = m.layout.StatusDir(FolderTodo)
	}
	docPath := filepath.Join(dir, ItemFileName(item.ID, title))
	item.LocationPath = m.layout.Rel(docPath)

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would allocate work item %d\n", item.ID)
		fmt.Fprintf(m.out, "[dry-run]   title:  %s\n", title)
		fmt.Fprintf(m.out, "[dry-run]   type:   %s\n", workType)
		if groupID != 0 {
			fmt.Fprintf(m.out, "[dry-run]   group:  %d\n", groupID)
		}
		fmt.Fprintf(m.out, "[dry-run]   write:  %s\n", item.LocationPath)
		fmt.Fprintf(m.out, "[dry-run]   counter: %d -> %d\n", reg.NextWorkItemID, reg.NextWorkItemID+1)
		return item, nil
	}

	content := []byte(initialItemDocument(item))
	tx := fsops.Begin().Rewrite(docPath, content)
	undo := fsops.Begin().Delete(docPath)
	if err := m.commitBoth(tx, undo, func() {
		TakeWorkItemID(reg)
		reg.PutWorkItem(item)
		if group != nil {
			group.MemberIDs = append(group.MemberIDs, item.ID)
		}
	}); err != nil {
		return nil, err
	}

	m.record("work_item", item.ID, "", string(models.StatusPlanned), title)
	return item, nil
}

// Start moves a planned item into the active-work location and stamps
// startedAt. An item belonging to a group may only start once the group
// itself has started.
func (m *workItemManager) Start(id int, dryRun bool) (*models.WorkItem, error) {
	const op = "start-work-item"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}
	if item.Status != models.StatusPlanned {
		return nil, validationErr(op, "", "work item %d status is %s, expected %s", id, item.Status, models.StatusPlanned)
	}
	if item.GroupID != 0 {
		group := reg.Group(item.GroupID)
		if group == nil {
			return nil, validationErr(op, "", "work item %d references unknown group %d", id, item.GroupID)
		}
		if group.Status == models.GroupPlanned {
			return nil, validationErr(op, fmt.Sprintf("start-group %d", item.GroupID),
				"group %d has not been started", item.GroupID)
		}
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	newAbs := oldAbs
	if item.GroupID == 0 {
		newAbs = filepath.Join(m.layout.StatusDir(FolderInProgress), filepath.Base(oldAbs))
	}

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would start work item %d\n", id)
		if newAbs != oldAbs {
			fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		}
		fmt.Fprintf(m.out, "[dry-run]   front-matter: status=in_progress, started=<now>\n")
		return item, nil
	}

	now := m.now()
	updated := *item
	updated.Status = models.StatusInProgress
	updated.StartedAt = &now
	updated.LocationPath = m.layout.Rel(newAbs)

	if err := m.relocate(op, item, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(models.StatusPlanned), string(models.StatusInProgress), "")
	return reg.WorkItem(id), nil
}

// Block marks an in-progress item as blocked: the document gains a
// --blocked name suffix in place and the pre-block elapsed time is
// accumulated into hoursSpent.
func (m *workItemManager) Block(id int, reason string, dryRun bool) (*models.WorkItem, error) {
	const op = "block-work-item"

	if strings.TrimSpace(reason) == "" {
		return nil, validationErr(op, "", "block reason must not be empty")
	}

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}
	if item.Status != models.StatusInProgress {
		return nil, validationErr(op, "", "work item %d status is %s, expected %s", id, item.Status, models.StatusInProgress)
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	newAbs := filepath.Join(filepath.Dir(oldAbs), WithSuffix(filepath.Base(oldAbs), SuffixBlocked))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would block work item %d (%s)\n", id, reason)
		fmt.Fprintf(m.out, "[dry-run]   rename: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		return item, nil
	}

	now := m.now()
	updated := *item
	updated.Status = models.StatusBlocked
	updated.BlockedAt = &now
	updated.BlockReason = reason
	if item.StartedAt != nil {
		h := hoursBetween(*item.StartedAt, now)
		updated.HoursSpent = &h
	}
	updated.LocationPath = m.layout.Rel(newAbs)

	if err := m.relocate(op, item, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(models.StatusInProgress), string(models.StatusBlocked), reason)
	return reg.WorkItem(id), nil
}

// Resume returns a blocked item to in_progress, stripping the blocked
// suffix and clearing blockedAt. Accumulated hours are preserved.
func (m *workItemManager) Resume(id int, dryRun bool) (*models.WorkItem, error) {
	const op = "resume-work-item"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}
	if item.Status != models.StatusBlocked {
		return nil, validationErr(op, "", "work item %d status is %s, expected %s", id, item.Status, models.StatusBlocked)
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	newAbs := filepath.Join(filepath.Dir(oldAbs), StripSuffix(filepath.Base(oldAbs), SuffixBlocked))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would resume work item %d\n", id)
		fmt.Fprintf(m.out, "[dry-run]   rename: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		return item, nil
	}

	updated := *item
	updated.Status = models.StatusInProgress
	updated.BlockedAt = nil
	updated.BlockReason = ""
	updated.LocationPath = m.layout.Rel(newAbs)

	if err := m.relocate(op, item, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(models.StatusBlocked), string(models.StatusInProgress), "")
	return reg.WorkItem(id), nil
}

// Complete finishes an in-progress item: the document must contain the
// retrospective section, the file is relocated/renamed with the --done
// suffix, hoursSpent is computed as total elapsed time from startedAt to
// completedAt (blocked time is not subtracted), and the completion tag is
// published after the registry commits.
func (m *workItemManager) Complete(id int, dryRun bool) (*CompletionResult, error) {
	const op = "complete-work-item"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}
	if item.Status != models.StatusInProgress {
		remedy := ""
		if item.Status == models.StatusBlocked {
			remedy = fmt.Sprintf("resume-work-item %d", id)
		}
		return nil, validationErr(op, remedy, "work item %d status is %s, expected %s", id, item.Status, models.StatusInProgress)
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	doc, err := m.readDocument(oldAbs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !strings.Contains(doc.Body, RetrospectiveHeading) {
		return nil, validationErr(op, "", "work item %d document is missing the %q section", id, RetrospectiveHeading)
	}
	// Pre-flight the tree before any side effect so a dirty tree cannot
	// strand a half-published completion.
	if m.tags != nil && !dryRun {
		if err := m.tags.CheckClean(); err != nil {
			return nil, err
		}
	}

	var newAbs string
	if item.GroupID != 0 {
		newAbs = filepath.Join(filepath.Dir(oldAbs), WithSuffix(filepath.Base(oldAbs), SuffixDone))
	} else {
		name := WithSuffix(filepath.Base(oldAbs), SuffixDone)
		newAbs = filepath.Join(m.layout.StatusDir(FolderDone), StandaloneDir, name)
	}

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would complete work item %d\n", id)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		fmt.Fprintf(m.out, "[dry-run]   front-matter: status=done, completed=<now>, hours=<elapsed>\n")
		fmt.Fprintf(m.out, "[dry-run]   registry update and tag publication skipped\n")
		return &CompletionResult{Item: item}, nil
	}

	now := m.now()
	updated := *item
	updated.Status = models.StatusDone
	updated.CompletedAt = &now
	if item.StartedAt != nil {
		h := hoursBetween(*item.StartedAt, now)
		updated.HoursSpent = &h
	}
	updated.LocationPath = m.layout.Rel(newAbs)

	if err := m.relocate(op, item, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(models.StatusInProgress), string(models.StatusDone), "")

	result := &CompletionResult{Item: reg.WorkItem(id)}
	if item.GroupID != 0 {
		result.GroupCheck = checkGroupCompletion(reg, item.GroupID)
	}
	if m.tags != nil {
		res, err := m.tags.Publish(id, item.Title)
		result.Publish = res
		if err != nil {
			// The completion is already committed; the caller decides
			// how to surface the tagging failure.
			result.PublishErr = err
		}
	}
	return result, nil
}

// Abort abandons an item from any non-terminal state. A blocked item does
// not need to be resumed first.
func (m *workItemManager) Abort(id int, reason string, dryRun bool) (*models.WorkItem, error) {
	const op = "abort-work-item"

	if strings.TrimSpace(reason) == "" {
		return nil, validationErr(op, "", "abort reason must not be empty")
	}

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}
	if item.Status.Terminal() {
		return nil, validationErr(op, "", "work item %d status is %s, a terminal state", id, item.Status)
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	name := filepath.Base(oldAbs)
	if item.Status == models.StatusBlocked {
		name = StripSuffix(name, SuffixBlocked)
	}
	name = WithSuffix(name, SuffixAborted)

	var newAbs string
	if item.GroupID != 0 {
		newAbs = filepath.Join(filepath.Dir(oldAbs), name)
	} else {
		newAbs = filepath.Join(m.layout.StatusDir(FolderAbandoned), name)
	}

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would abort work item %d (%s)\n", id, reason)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		return item, nil
	}

	now := m.now()
	prev := item.Status
	updated := *item
	updated.Status = models.StatusAborted
	updated.AbortedAt = &now
	updated.AbortReason = reason
	updated.BlockedAt = nil
	updated.BlockReason = ""
	if item.StartedAt != nil {
		h := hoursBetween(*item.StartedAt, now)
		updated.HoursSpent = &h
	}
	updated.LocationPath = m.layout.Rel(newAbs)

	if err := m.relocate(op, item, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(prev), string(models.StatusAborted), reason)
	return reg.WorkItem(id), nil
}

// Recover moves a misplaced work item document back to the location its
// registry status dictates and re-syncs the front-matter status field.
func (m *workItemManager) Recover(id int, dryRun bool) (*models.WorkItem, error) {
	const op = "recover-work-item"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(id)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", id)
	}

	actualAbs, err := m.findItemFile(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if actualAbs == "" {
		return nil, validationErr(op, "", "work item %d document not found anywhere under the work dir", id)
	}

	expectedAbs := m.expectedLocation(reg, item)

	if actualAbs == expectedAbs {
		fmt.Fprintf(m.out, "work item %d is already in place: %s\n", id, m.layout.Rel(actualAbs))
		return item, nil
	}

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would recover work item %d\n", id)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", m.layout.Rel(actualAbs), m.layout.Rel(expectedAbs))
		return item, nil
	}

	updated := *item
	updated.LocationPath = m.layout.Rel(expectedAbs)
	if err := m.relocate(op, item, &updated, actualAbs, expectedAbs); err != nil {
		return nil, err
	}

	m.record("work_item", id, string(item.Status), string(item.Status), "recovered")
	return reg.WorkItem(id), nil
}

func (m *workItemManager) Get(id int) (*models.WorkItem, error) {
	if err := m.reg.Load(); err != nil {
		return nil, err
	}
	item := m.reg.Registry().WorkItem(id)
	if item == nil {
		return nil, validationErr("status", "", "work item %d not found", id)
	}
	return item, nil
}

func (m *workItemManager) List() ([]*models.WorkItem, error) {
	if err := m.reg.Load(); err != nil {
		return nil, err
	}
	reg := m.reg.Registry()
	items := make([]*models.WorkItem, 0, len(reg.WorkItems))
	for _, item := range reg.WorkItems {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// relocate commits the file move/rewrite for a transition and then
// persists the registry snapshot, reversing the file changes when the
// registry write fails so the registry never points at a missing path.
func (m *workItemManager) relocate(op string, current, updated *models.WorkItem, oldAbs, newAbs string) error {
	original, err := os.ReadFile(oldAbs)
	if err != nil {
		return fmt.Errorf("%s: reading document: %w", op, err)
	}
	doc := frontmatter.Decode(string(original))
	applyItemFrontMatter(doc, updated)
	content := []byte(doc.Encode())

	tx := fsops.Begin()
	undo := fsops.Begin()
	if newAbs != oldAbs {
		tx.Move(oldAbs, newAbs)
		tx.Rewrite(newAbs, content)
		undo.Move(newAbs, oldAbs)
		undo.Rewrite(oldAbs, original)
	} else {
		tx.Rewrite(oldAbs, content)
		undo.Rewrite(oldAbs, original)
	}

	return m.commitBoth(tx, undo, func() {
		*current = *updated
		m.reg.Registry().PutWorkItem(current)
	})
}

// commitBoth runs the file transaction, applies the registry mutation, and
// persists it; a failed registry write triggers the compensating file
// transaction before surfacing the error.
func (m *workItemManager) commitBoth(tx, undo *fsops.Transaction, mutate func()) error {
	if err := tx.Commit(); err != nil {
		return err
	}
	mutate()
	if err := m.reg.Save(); err != nil {
		_ = undo.Commit()
		return err
	}
	return nil
}

func (m *workItemManager) record(entity string, id int, from, to, note string) {
	if m.events != nil {
		m.events.RecordTransition(entity, id, from, to, note)
	}
}

func (m *workItemManager) readDocument(abs string) (*frontmatter.Document, error) {
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return frontmatter.Decode(string(raw)), nil
}

// findItemFile searches every status directory (recursively, so group
// folders are covered) for a document named item-NN_*.
func (m *workItemManager) findItemFile(id int) (string, error) {
	prefix := fmt.Sprintf("item-%02d_", id)
	var found string
	for _, folder := range StatusFolders {
		dir := m.layout.StatusDir(folder)
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipAll
				}
				return err
			}
			if !d.IsDir() && strings.HasPrefix(d.Name(), prefix) {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("searching %s: %w", folder, err)
		}
		if found != "" {
			return found, nil
		}
	}
	return "", nil
}

// expectedLocation derives the canonical document path for an item from
// its registry status.
func (m *workItemManager) expectedLocation(reg *models.Registry, item *models.WorkItem) string {
	name := ItemFileName(item.ID, item.Title)
	switch item.Status {
	case models.StatusBlocked:
		name = WithSuffix(name, SuffixBlocked)
	case models.StatusDone:
		name = WithSuffix(name, SuffixDone)
	case models.StatusAborted:
		name = WithSuffix(name, SuffixAborted)
	}

	if item.GroupID != 0 {
		if group := reg.Group(item.GroupID); group != nil {
			return filepath.Join(m.layout.Abs(group.LocationPath), name)
		}
	}

	switch item.Status {
	case models.StatusPlanned:
		return filepath.Join(m.layout.StatusDir(FolderTodo), name)
	case models.StatusInProgress, models.StatusBlocked:
		return filepath.Join(m.layout.StatusDir(FolderInProgress), name)
	case models.StatusDone:
		return filepath.Join(m.layout.StatusDir(FolderDone), StandaloneDir, name)
	case models.StatusAborted:
		return filepath.Join(m.layout.StatusDir(FolderAbandoned), name)
	}
	return filepath.Join(m.layout.StatusDir(FolderTodo), name)
}

// applyItemFrontMatter syncs the mutable front-matter fields from the
// registry snapshot. Keys the engine does not own are left untouched.
func applyItemFrontMatter(doc *frontmatter.Document, item *models.WorkItem) {
	doc.Set("status", string(item.Status))
	doc.Set("started", tsValue(item.StartedAt))
	doc.Set("completed", tsValue(item.CompletedAt))
	doc.Set("aborted", tsValue(item.AbortedAt))
	doc.Set("blocked", tsValue(item.BlockedAt))
	if item.HoursSpent != nil {
		doc.Set("hours", *item.HoursSpent)
	} else {
		doc.Set("hours", nil)
	}
	if item.BlockReason != "" {
		doc.Set("block_reason", item.BlockReason)
	}
	if item.AbortReason != "" {
		doc.Set("abort_reason", item.AbortReason)
	}
}

// initialItemDocument renders the document written at allocation time. The
// retrospective section is intentionally absent: the operator adds it when
// the work is actually done.
func initialItemDocument(item *models.WorkItem) string {
	group := "null"
	if item.GroupID != 0 {
		group = fmt.Sprintf("%d", item.GroupID)
	}
	return fmt.Sprintf(`---
item: %d
title: %q
group: %s
type: %s
status: %s
created: %s
started: null
completed: null
aborted: null
blocked: null
hours: null
---

# Work Item %d: %s

## Goal

## Notes
`, item.ID, item.Title, group, item.WorkType, item.Status,
		item.CreatedAt.Format(time.RFC3339), item.ID, item.Title)
}

func tsValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

// hoursBetween returns the elapsed wall-clock hours rounded to one
// decimal, matching the registry's precision for hoursSpent.
func hoursBetween(from, to time.Time) float64 {
	return math.Round(to.Sub(from).Hours()*10) / 10
}
