package models

import "strconv"

// RegistryVersion is the current on-disk registry schema version.
const RegistryVersion = "1.0"

// Registry is the single persisted JSON document holding the ID counters
// and the metadata snapshots for every work item and group. It is loaded
// fully into memory at the start of a command, mutated, and written back
// atomically at the end.
type Registry struct {
	Version string `json:"version"`

	// NextWorkItemID and NextGroupID increase monotonically, exactly once
	// per successful allocation. IDs are never reused, even for aborted
	// or deleted entities.
	NextWorkItemID int `json:"nextWorkItemId"`
	NextGroupID    int `json:"nextGroupId"`

	// Keys are decimal string forms of the IDs.
	WorkItems map[string]*WorkItem `json:"workItems"`
	Groups    map[string]*Group    `json:"groups"`
}

// NewRegistry returns an empty registry with counters starting at 1.
func NewRegistry() *Registry {
	return &Registry{
		Version:        RegistryVersion,
		NextWorkItemID: 1,
		NextGroupID:    1,
		WorkItems:      make(map[string]*WorkItem),
		Groups:         make(map[string]*Group),
	}
}

// WorkItem returns the work item with the given ID, or nil if unknown.
func (r *Registry) WorkItem(id int) *WorkItem {
	return r.WorkItems[strconv.Itoa(id)]
}

// Group returns the group with the given ID, or nil if unknown.
func (r *Registry) Group(id int) *Group {
	return r.Groups[strconv.Itoa(id)]
}

// PutWorkItem stores (or replaces) a work item snapshot.
func (r *Registry) PutWorkItem(item *WorkItem) {
	r.WorkItems[strconv.Itoa(item.ID)] = item
}

// PutGroup stores (or replaces) a group snapshot.
func (r *Registry) PutGroup(group *Group) {
	r.Groups[strconv.Itoa(group.ID)] = group
}
