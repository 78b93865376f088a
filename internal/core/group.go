package core

import (
	"fmt"
	"io"
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

// GroupCompletionStatus is the result of the group completion check: a
// group may transition to done only when Remaining is empty.
type GroupCompletionStatus struct {
	GroupID   int
	Complete  bool
	Done      int
	Aborted   int
	Remaining []int
}

// checkGroupCompletion inspects every member work item in the registry.
// It is a pure read; the actual group transition re-runs it as its
// precondition.
func checkGroupCompletion(reg *models.Registry, groupID int) *GroupCompletionStatus {
	status := &GroupCompletionStatus{GroupID: groupID}
	group := reg.Group(groupID)
	if group == nil {
		return status
	}
	for _, memberID := range group.MemberIDs {
		item := reg.WorkItem(memberID)
		if item == nil {
			status.Remaining = append(status.Remaining, memberID)
			continue
		}
		switch item.Status {
		case models.StatusDone:
			status.Done++
		case models.StatusAborted:
			status.Aborted++
		default:
			status.Remaining = append(status.Remaining, memberID)
		}
	}
	status.Complete = len(group.MemberIDs) > 0 && len(status.Remaining) == 0
	return status
}

// GroupManager validates and executes group lifecycle transitions:
// planned -> in_progress -> done -> archived. Completion requires every
// member work item to be in a terminal state.
type GroupManager interface {
	Allocate(title string, dryRun bool) (*models.Group, error)
	Start(id int, dryRun bool) (*models.Group, error)
	CheckCompletion(id int) (*GroupCompletionStatus, error)
	Complete(id int, dryRun bool) (*models.Group, error)
	Archive(id int, dryRun bool) (*models.Group, error)
	AddWorkItem(itemID, groupID int, dryRun bool) (*models.WorkItem, error)
	Get(id int) (*models.Group, error)
	List() ([]*models.Group, error)
}

type groupManager struct {
	layout Layout
	reg    storage.RegistryManager
	events TransitionRecorder
	out    io.Writer
	now    func() time.Time
}

// NewGroupManager creates a GroupManager. events may be nil.
func NewGroupManager(layout Layout, reg storage.RegistryManager, events TransitionRecorder, out io.Writer) GroupManager {
	if out == nil {
		out = os.Stdout
	}
	return &groupManager{
		layout: layout,
		reg:    reg,
		events: events,
		out:    out,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Allocate assigns the next group ID, creates the group folder with its
// _group.md document in the planned location, and registers the group.
func (m *groupManager) Allocate(title string, dryRun bool) (*models.Group, error) {
	const op = "allocate-group"

	if strings.TrimSpace(title) == "" {
		return nil, validationErr(op, "", "title must not be empty")
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

	now := m.now()
	group := &models.Group{
		ID:        reg.NextGroupID,
		Title:     title,
		Status:    models.GroupPlanned,
		MemberIDs: []int{},
		StartedAt: nil,
	}
	dirAbs := filepath.Join(m.layout.StatusDir(FolderTodo), GroupDirName(group.ID, title))
	group.LocationPath = m.layout.Rel(dirAbs)
	docPath := filepath.Join(dirAbs, GroupFile)

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would allocate group %d\n", group.ID)
		fmt.Fprintf(m.out, "[dry-run]   title: %s\n", title)
		fmt.Fprintf(m.out, "[dry-run]   write: %s\n", m.layout.Rel(docPath))
		fmt.Fprintf(m.out, "[dry-run]   counter: %d -> %d\n", reg.NextGroupID, reg.NextGroupID+1)
		return group, nil
	}

	content := []byte(initialGroupDocument(group, now))
	tx := fsops.Begin().Rewrite(docPath, content)
	undo := fsops.Begin().Delete(docPath)
	if err := m.commitBoth(tx, undo, func() {
		TakeGroupID(reg)
		reg.PutGroup(group)
	}); err != nil {
		return nil, err
	}

	m.record(group.ID, "", string(models.GroupPlanned), title)
	return group, nil
}

// Start moves the group folder into the active-work location; member
// items may only start afterwards.
func (m *groupManager) Start(id int, dryRun bool) (*models.Group, error) {
	const op = "start-group"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	group := reg.Group(id)
	if group == nil {
		return nil, validationErr(op, "", "group %d not found", id)
	}
	if group.Status != models.GroupPlanned {
		return nil, validationErr(op, "", "group %d status is %s, expected %s", id, group.Status, models.GroupPlanned)
	}

	oldAbs := m.layout.Abs(group.LocationPath)
	newAbs := filepath.Join(m.layout.StatusDir(FolderInProgress), filepath.Base(oldAbs))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would start group %d\n", id)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", group.LocationPath, m.layout.Rel(newAbs))
		return group, nil
	}

	now := m.now()
	updated := *group
	updated.Status = models.GroupInProgress
	updated.StartedAt = &now

	if err := m.relocateFolder(op, group, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record(id, string(models.GroupPlanned), string(models.GroupInProgress), "")
	return reg.Group(id), nil
}

// CheckCompletion reports whether every member has reached a terminal
// status. It never mutates state.
func (m *groupManager) CheckCompletion(id int) (*GroupCompletionStatus, error) {
	if err := m.reg.Load(); err != nil {
		return nil, err
	}
	reg := m.reg.Registry()
	if reg.Group(id) == nil {
		return nil, validationErr("check-group-completion", "", "group %d not found", id)
	}
	return checkGroupCompletion(reg, id), nil
}

// Complete transitions a group to done. The completion check is re-run as
// the precondition and fails loudly when any member is still open.
func (m *groupManager) Complete(id int, dryRun bool) (*models.Group, error) {
	const op = "complete-group"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	group := reg.Group(id)
	if group == nil {
		return nil, validationErr(op, "", "group %d not found", id)
	}
	if group.Status != models.GroupInProgress {
		return nil, validationErr(op, "", "group %d status is %s, expected %s", id, group.Status, models.GroupInProgress)
	}
	check := checkGroupCompletion(reg, id)
	if !check.Complete {
		return nil, validationErr(op, "", "group %d has %d open member(s): %s",
			id, len(check.Remaining), joinIDs(check.Remaining))
	}

	oldAbs := m.layout.Abs(group.LocationPath)
	newAbs := filepath.Join(m.layout.StatusDir(FolderDone), filepath.Base(oldAbs))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would complete group %d (%d done, %d aborted)\n", id, check.Done, check.Aborted)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", group.LocationPath, m.layout.Rel(newAbs))
		return group, nil
	}

	now := m.now()
	updated := *group
	updated.Status = models.GroupDone
	updated.CompletedAt = &now
	total := 0.0
	for _, memberID := range group.MemberIDs {
		if item := reg.WorkItem(memberID); item != nil && item.Status.Terminal() && item.HoursSpent != nil {
			total += *item.HoursSpent
		}
	}
	updated.TotalHours = &total

	if err := m.relocateFolder(op, group, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record(id, string(models.GroupInProgress), string(models.GroupDone), "")
	return reg.Group(id), nil
}

// Archive moves a completed group folder into the archive location.
func (m *groupManager) Archive(id int, dryRun bool) (*models.Group, error) {
	const op = "archive-group"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	group := reg.Group(id)
	if group == nil {
		return nil, validationErr(op, "", "group %d not found", id)
	}
	if group.Status != models.GroupDone {
		remedy := ""
		if group.Status == models.GroupInProgress {
			remedy = fmt.Sprintf("complete-group %d", id)
		}
		return nil, validationErr(op, remedy, "group %d status is %s, expected %s", id, group.Status, models.GroupDone)
	}

	oldAbs := m.layout.Abs(group.LocationPath)
	newAbs := filepath.Join(m.layout.StatusDir(FolderArchived), filepath.Base(oldAbs))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would archive group %d\n", id)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", group.LocationPath, m.layout.Rel(newAbs))
		return group, nil
	}

	now := m.now()
	updated := *group
	updated.Status = models.GroupArchived
	updated.ArchivedAt = &now

	if err := m.relocateFolder(op, group, &updated, oldAbs, newAbs); err != nil {
		return nil, err
	}

	m.record(id, string(models.GroupDone), string(models.GroupArchived), "")
	return reg.Group(id), nil
}

// AddWorkItem reassigns a planned standalone work item into a group,
// moving its document into the group folder.
func (m *groupManager) AddWorkItem(itemID, groupID int, dryRun bool) (*models.WorkItem, error) {
	const op = "group-add-work-item"

	release, err := m.reg.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := m.reg.Load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg := m.reg.Registry()

	item := reg.WorkItem(itemID)
	if item == nil {
		return nil, validationErr(op, "", "work item %d not found", itemID)
	}
	group := reg.Group(groupID)
	if group == nil {
		return nil, validationErr(op, "", "group %d not found", groupID)
	}
	if item.GroupID == groupID {
		return nil, validationErr(op, "", "work item %d already belongs to group %d", itemID, groupID)
	}
	if item.GroupID != 0 {
		return nil, validationErr(op, "", "work item %d already belongs to group %d; items belong to at most one group", itemID, item.GroupID)
	}
	if item.Status != models.StatusPlanned {
		return nil, validationErr(op, "", "work item %d status is %s, expected %s", itemID, item.Status, models.StatusPlanned)
	}
	if group.Status == models.GroupDone || group.Status == models.GroupArchived {
		return nil, validationErr(op, "", "group %d is %s; items cannot be added", groupID, group.Status)
	}

	oldAbs := m.layout.Abs(item.LocationPath)
	newAbs := filepath.Join(m.layout.Abs(group.LocationPath), filepath.Base(oldAbs))

	if dryRun {
		fmt.Fprintf(m.out, "[dry-run] would add work item %d to group %d\n", itemID, groupID)
		fmt.Fprintf(m.out, "[dry-run]   move: %s -> %s\n", item.LocationPath, m.layout.Rel(newAbs))
		return item, nil
	}

	original, err := os.ReadFile(oldAbs)
	if err != nil {
		return nil, fmt.Errorf("%s: reading document: %w", op, err)
	}
	doc := frontmatter.Decode(string(original))
	doc.Set("group", groupID)
	content := []byte(doc.Encode())

	tx := fsops.Begin().Move(oldAbs, newAbs).Rewrite(newAbs, content)
	undo := fsops.Begin().Move(newAbs, oldAbs).Rewrite(oldAbs, original)

	if err := m.commitBoth(tx, undo, func() {
		item.GroupID = groupID
		item.LocationPath = m.layout.Rel(newAbs)
		group.MemberIDs = append(group.MemberIDs, itemID)
	}); err != nil {
		return nil, err
	}

	m.record(groupID, "", "", fmt.Sprintf("work item %d added", itemID))
	return item, nil
}

func (m *groupManager) Get(id int) (*models.Group, error) {
	if err := m.reg.Load(); err != nil {
		return nil, err
	}
	group := m.reg.Registry().Group(id)
	if group == nil {
		return nil, validationErr("status", "", "group %d not found", id)
	}
	return group, nil
}

func (m *groupManager) List() ([]*models.Group, error) {
	if err := m.reg.Load(); err != nil {
		return nil, err
	}
	reg := m.reg.Registry()
	groups := make([]*models.Group, 0, len(reg.Groups))
	for _, group := range reg.Groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// relocateFolder moves the group folder, rewrites _group.md front-matter,
// updates every member's locationPath to the new prefix, and persists the
// registry; file effects are reversed when the registry write fails.
func (m *groupManager) relocateFolder(op string, current, updated *models.Group, oldAbs, newAbs string) error {
	docOld := filepath.Join(oldAbs, GroupFile)
	original, err := os.ReadFile(docOld)
	if err != nil {
		return fmt.Errorf("%s: reading group document: %w", op, err)
	}
	doc := frontmatter.Decode(string(original))
	applyGroupFrontMatter(doc, updated)
	content := []byte(doc.Encode())

	// The group doc is rewritten in place before the folder moves; moving
	// first would leave the rewrite target inside a relocated directory,
	// where a rollback cannot restore it.
	if err := fsops.Begin().Rewrite(docOld, content).Commit(); err != nil {
		return err
	}
	tx := fsops.Begin().Move(oldAbs, newAbs)
	undo := fsops.Begin().Move(newAbs, oldAbs).Rewrite(docOld, original)
	restoreDoc := func() { _ = fsops.Begin().Rewrite(docOld, original).Commit() }

	oldRel := m.layout.Rel(oldAbs)
	newRel := m.layout.Rel(newAbs)

	if err := tx.Commit(); err != nil {
		restoreDoc()
		return err
	}
	return m.commitRegistry(undo, func() {
		reg := m.reg.Registry()
		updated.LocationPath = newRel
		*current = *updated
		reg.PutGroup(current)
		for _, memberID := range current.MemberIDs {
			if item := reg.WorkItem(memberID); item != nil {
				if rest, ok := strings.CutPrefix(item.LocationPath, oldRel); ok {
					item.LocationPath = newRel + rest
				}
			}
		}
	})
}

func (m *groupManager) commitBoth(tx, undo *fsops.Transaction, mutate func()) error {
	if err := tx.Commit(); err != nil {
		return err
	}
	return m.commitRegistry(undo, mutate)
}

// commitRegistry applies the in-memory mutation and persists the registry,
// running the compensating file transaction when the write fails.
func (m *groupManager) commitRegistry(undo *fsops.Transaction, mutate func()) error {
	mutate()
	if err := m.reg.Save(); err != nil {
		_ = undo.Commit()
		return err
	}
	return nil
}

func (m *groupManager) record(id int, from, to, note string) {
	if m.events != nil {
		m.events.RecordTransition("group", id, from, to, note)
	}
}

func applyGroupFrontMatter(doc *frontmatter.Document, group *models.Group) {
	doc.Set("status", string(group.Status))
	doc.Set("started", tsValue(group.StartedAt))
	doc.Set("completed", tsValue(group.CompletedAt))
	doc.Set("archived", tsValue(group.ArchivedAt))
	if group.TotalHours != nil {
		doc.Set("total_hours", *group.TotalHours)
	}
}

func initialGroupDocument(group *models.Group, created time.Time) string {
	return fmt.Sprintf(`---
group: %d
title: %q
status: %s
created: %s
started: null
completed: null
archived: null
total_hours: null
---

# Group %d: %s

## Scope
`, group.ID, group.Title, group.Status, created.Format(time.RFC3339), group.ID, group.Title)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
