package core

import (
	"fmt"

	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

// TakeWorkItemID reads the next work item counter from the registry value
// and advances it. The caller is responsible for persisting the registry;
// the counter state is explicit rather than ambient so the concurrent
// read-modify-write hazard stays visible and testable.
func TakeWorkItemID(reg *models.Registry) int {
	id := reg.NextWorkItemID
	reg.NextWorkItemID = id + 1
	return id
}

// TakeGroupID reads the next group counter and advances it.
func TakeGroupID(reg *models.Registry) int {
	id := reg.NextGroupID
	reg.NextGroupID = id + 1
	return id
}

// NumberingAllocator hands out the next unused work item / group ID and
// atomically persists the increment before the ID is returned. A crash
// between read and persist is a failed allocation with no ID issued, never
// a duplicate. IDs are never reused, including for aborted or deleted
// entities.
type NumberingAllocator interface {
	AllocateWorkItemID() (int, error)
	AllocateGroupID() (int, error)
}

type registryAllocator struct {
	reg storage.RegistryManager
}

// NewNumberingAllocator creates a NumberingAllocator backed by the given
// registry manager.
func NewNumberingAllocator(reg storage.RegistryManager) NumberingAllocator {
	return &registryAllocator{reg: reg}
}

func (a *registryAllocator) AllocateWorkItemID() (int, error) {
	return a.allocate("work item", TakeWorkItemID)
}

func (a *registryAllocator) AllocateGroupID() (int, error) {
	return a.allocate("group", TakeGroupID)
}

// allocate performs the read-increment-persist sequence under the advisory
// lock, so two engine invocations cannot both observe the same counter.
func (a *registryAllocator) allocate(kind string, take func(*models.Registry) int) (int, error) {
	release, err := a.reg.Acquire()
	if err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", kind, err)
	}
	defer release()

	if err := a.reg.Load(); err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", kind, err)
	}
	id := take(a.reg.Registry())
	if err := a.reg.Save(); err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", kind, err)
	}
	return id, nil
}
