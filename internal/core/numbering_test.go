package core

import (
	"sync"
	"testing"

	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

func TestTakeWorkItemID_Advances(t *testing.T) {
	reg := models.NewRegistry()
	if id := TakeWorkItemID(reg); id != 1 {
		t.Errorf("expected first ID 1, got %d", id)
	}
	if id := TakeWorkItemID(reg); id != 2 {
		t.Errorf("expected second ID 2, got %d", id)
	}
	if reg.NextWorkItemID != 3 {
		t.Errorf("expected counter at 3, got %d", reg.NextWorkItemID)
	}
}

func TestTakeGroupID_IndependentOfItemCounter(t *testing.T) {
	reg := models.NewRegistry()
	TakeWorkItemID(reg)
	TakeWorkItemID(reg)
	if id := TakeGroupID(reg); id != 1 {
		t.Errorf("expected group counter untouched by item allocations, got %d", id)
	}
}

func TestAllocate_PersistsAcrossManagers(t *testing.T) {
	dir := t.TempDir()

	alloc := NewNumberingAllocator(storage.NewRegistryManager(dir, false))
	id1, err := alloc.AllocateWorkItemID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != 1 {
		t.Errorf("expected first ID 1, got %d", id1)
	}

	// A fresh manager over the same directory continues the sequence.
	fresh := NewNumberingAllocator(storage.NewRegistryManager(dir, false))
	id2, err := fresh.AllocateWorkItemID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id2 != 2 {
		t.Errorf("expected second ID 2, got %d", id2)
	}
}

// Two unsynchronized engine invocations that interleave their
// load-increment-save windows both observe the same counter and hand out
// a duplicate ID. This is the hazard the advisory lock exists for.
func TestAllocate_InterleavedWithoutLockDuplicates(t *testing.T) {
	dir := t.TempDir()

	a := storage.NewRegistryManager(dir, false)
	b := storage.NewRegistryManager(dir, false)

	if err := a.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idA := TakeWorkItemID(a.Registry())
	idB := TakeWorkItemID(b.Registry())
	if err := a.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idA != idB {
		t.Fatalf("expected the interleaving to duplicate an ID, got %d and %d", idA, idB)
	}
}

func TestAllocate_ConcurrentWithLockStaysUnique(t *testing.T) {
	dir := t.TempDir()
	const n = 16

	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			alloc := NewNumberingAllocator(storage.NewRegistryManager(dir, true))
			id, err := alloc.AllocateWorkItemID()
			if err != nil {
				t.Errorf("allocation failed: %v", err)
				return
			}
			ids[slot] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if seen[id] {
			t.Fatalf("duplicate ID %d under the advisory lock", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique IDs, got %d", n, len(seen))
	}
}
