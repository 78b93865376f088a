package models

import "time"

// WorkType represents the kind of work a work item involves. It determines
// the default quality threshold applied by external tooling, not by the
// engine itself.
type WorkType string

const (
	TypeFullstack      WorkType = "fullstack"
	TypeBackend        WorkType = "backend"
	TypeFrontend       WorkType = "frontend"
	TypeResearch       WorkType = "research"
	TypeSpike          WorkType = "spike"
	TypeInfrastructure WorkType = "infrastructure"
)

// WorkTypes lists every valid work type.
var WorkTypes = []WorkType{
	TypeFullstack, TypeBackend, TypeFrontend,
	TypeResearch, TypeSpike, TypeInfrastructure,
}

// Valid reports whether t is one of the known work types.
func (t WorkType) Valid() bool {
	for _, known := range WorkTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ItemStatus represents the current lifecycle state of a work item.
type ItemStatus string

const (
	StatusPlanned    ItemStatus = "planned"
	StatusInProgress ItemStatus = "in_progress"
	StatusBlocked    ItemStatus = "blocked"
	StatusDone       ItemStatus = "done"
	StatusAborted    ItemStatus = "aborted"
)

// Terminal reports whether the status permits no further transitions.
// blocked is non-terminal: it is always reversible to in_progress.
func (s ItemStatus) Terminal() bool {
	return s == StatusDone || s == StatusAborted
}

// WorkItem is the registry snapshot of a single trackable unit of work.
// The item's own document is authoritative for narrative content; this
// snapshot is authoritative for cross-item queries.
type WorkItem struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	GroupID  int        `json:"groupId,omitempty"` // 0 = standalone
	WorkType WorkType   `json:"workType"`
	Status   ItemStatus `json:"status"`

	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	AbortedAt   *time.Time `json:"abortedAt,omitempty"`
	BlockedAt   *time.Time `json:"blockedAt,omitempty"`

	// HoursSpent is computed at completion as CompletedAt - StartedAt in
	// hours. Blocking accumulates pre-block elapsed time so the figure
	// survives a block/resume cycle.
	HoursSpent *float64 `json:"hoursSpent,omitempty"`

	BlockReason string `json:"blockReason,omitempty"`
	AbortReason string `json:"abortReason,omitempty"`

	// LocationPath is the work-tree-relative path of the item's document.
	// It changes on every transition that relocates or renames the file.
	LocationPath string `json:"locationPath"`
}
