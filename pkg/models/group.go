package models

import "time"

// GroupStatus represents the current lifecycle state of a group.
type GroupStatus string

const (
	GroupPlanned    GroupStatus = "planned"
	GroupInProgress GroupStatus = "in_progress"
	GroupDone       GroupStatus = "done"
	GroupArchived   GroupStatus = "archived"
)

// Group is the registry snapshot of a named collection of work items
// tracked toward a shared completion goal.
type Group struct {
	ID     int         `json:"id"`
	Title  string      `json:"title"`
	Status GroupStatus `json:"status"`

	// MemberIDs is an ordered, append-only set of work item IDs. A work
	// item belongs to at most one group at a time.
	MemberIDs []int `json:"memberIds"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`

	// TotalHours is computed at completion as the sum of HoursSpent over
	// all members with terminal status.
	TotalHours *float64 `json:"totalHours,omitempty"`

	// LocationPath is the work-tree-relative path of the group's folder.
	LocationPath string `json:"locationPath"`
}

// HasMember reports whether id is already a member of the group.
func (g *Group) HasMember(id int) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}
