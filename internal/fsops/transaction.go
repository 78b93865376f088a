// Package fsops provides the atomic file mutation primitive that every
// destructive operation in the engine is built on: snapshot the paths a
// mutation will touch, execute it, verify the postcondition, and restore
// the snapshot on any failure.
package fsops

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// FileOperationError reports a file-system mutation that failed
// verification. By the time it is returned, every path the transaction
// touched has been restored to its pre-transaction state.
type FileOperationError struct {
	Op   string // "move", "rewrite", "delete"
	Path string
	Err  error
}

func (e *FileOperationError) Error() string {
	return fmt.Sprintf("file operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }

type opKind string

const (
	opMove    opKind = "move"
	opRewrite opKind = "rewrite"
	opDelete  opKind = "delete"
)

type operation struct {
	kind    opKind
	src     string // move only
	path    string // destination / target
	content []byte // rewrite only
}

// snapshot captures the pre-transaction state of a single path. Directory
// contents are not copied; a moved directory is rolled back by renaming it
// back into place.
type snapshot struct {
	path    string
	existed bool
	isDir   bool
	content []byte
	mode    os.FileMode
}

// Transaction stages a sequence of file mutations and commits them
// atomically: either every staged operation executes and verifies, or the
// file system is restored bit-for-bit to its state before Commit.
//
// A Transaction is single-use. Stage operations with Move, Rewrite, and
// Delete, then call Commit.
type Transaction struct {
	ops []operation

	// injectFault, when non-nil, is invoked after execute and before
	// verify. Tests use it to prove the rollback path restores the
	// original state.
	injectFault func() error
}

// Begin starts a new empty transaction.
func Begin() *Transaction {
	return &Transaction{}
}

// Move stages a move/rename of src to dst. Parent directories of dst are
// created on commit.
func (tx *Transaction) Move(src, dst string) *Transaction {
	tx.ops = append(tx.ops, operation{kind: opMove, src: src, path: dst})
	return tx
}

// Rewrite stages a full-content rewrite (or creation) of path.
func (tx *Transaction) Rewrite(path string, content []byte) *Transaction {
	tx.ops = append(tx.ops, operation{kind: opRewrite, path: path, content: content})
	return tx
}

// Delete stages removal of path.
func (tx *Transaction) Delete(path string) *Transaction {
	tx.ops = append(tx.ops, operation{kind: opDelete, path: path})
	return tx
}

// Empty reports whether no operations have been staged.
func (tx *Transaction) Empty() bool { return len(tx.ops) == 0 }

// Commit snapshots every touched path, executes the staged operations in
// order, and verifies each postcondition. On any error the snapshots are
// restored and a *FileOperationError carrying the original cause is
// returned. No operation is considered complete until verification passes.
func (tx *Transaction) Commit() error {
	snaps, err := tx.takeSnapshots()
	if err != nil {
		return &FileOperationError{Op: "snapshot", Path: "", Err: err}
	}

	executed := 0
	for _, op := range tx.ops {
		if err := execute(op); err != nil {
			tx.rollback(snaps, executed)
			return &FileOperationError{Op: string(op.kind), Path: op.path, Err: err}
		}
		executed++
	}

	if tx.injectFault != nil {
		if err := tx.injectFault(); err != nil {
			tx.rollback(snaps, executed)
			return &FileOperationError{Op: "execute", Path: "", Err: err}
		}
	}

	for _, op := range tx.ops {
		if err := verify(op); err != nil {
			tx.rollback(snaps, executed)
			return &FileOperationError{Op: string(op.kind), Path: op.path, Err: err}
		}
	}

	return nil
}

// takeSnapshots records the current bytes of every path the transaction
// will touch, creating the backup the rollback path restores from.
func (tx *Transaction) takeSnapshots() (map[string]snapshot, error) {
	snaps := make(map[string]snapshot)

	record := func(path string) error {
		if _, ok := snaps[path]; ok {
			return nil
		}

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			snaps[path] = snapshot{path: path}
			return nil
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			snaps[path] = snapshot{path: path, existed: true, isDir: true}
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("backing up %s: %w", path, err)
		}
		snaps[path] = snapshot{path: path, existed: true, content: content, mode: info.Mode()}
		return nil
	}

	for _, op := range tx.ops {
		if op.kind == opMove {
			if err := record(op.src); err != nil {
				return nil, err
			}
		}
		if err := record(op.path); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

func execute(op operation) error {
	switch op.kind {
	case opMove:
		if _, err := os.Stat(op.path); err == nil {
			return fmt.Errorf("destination %s already exists", op.path)
		}
		if err := os.MkdirAll(filepath.Dir(op.path), 0o750); err != nil {
			return fmt.Errorf("creating destination directory: %w", err)
		}
		if err := os.Rename(op.src, op.path); err != nil {
			return fmt.Errorf("moving %s: %w", op.src, err)
		}
	case opRewrite:
		if err := os.MkdirAll(filepath.Dir(op.path), 0o750); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
		if err := os.WriteFile(op.path, op.content, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", op.path, err)
		}
	case opDelete:
		if err := os.Remove(op.path); err != nil {
			return fmt.Errorf("deleting %s: %w", op.path, err)
		}
	}
	return nil
}

// verify re-reads the expected postcondition of an executed operation.
func verify(op operation) error {
	switch op.kind {
	case opMove:
		if _, err := os.Stat(op.src); !os.IsNotExist(err) {
			return fmt.Errorf("source %s still exists after move", op.src)
		}
		if _, err := os.Stat(op.path); err != nil {
			return fmt.Errorf("destination missing after move: %w", err)
		}
	case opRewrite:
		got, err := os.ReadFile(op.path)
		if err != nil {
			return fmt.Errorf("re-reading after rewrite: %w", err)
		}
		if !bytes.Equal(got, op.content) {
			return fmt.Errorf("content mismatch after rewrite of %s", op.path)
		}
	case opDelete:
		if _, err := os.Stat(op.path); !os.IsNotExist(err) {
			return fmt.Errorf("%s still exists after delete", op.path)
		}
	}
	return nil
}

// rollback undoes the first `executed` operations in reverse order and
// restores file snapshots. Moves are reversed by renaming back; rewrites
// and deletes are reversed from the snapshotted bytes. Restore errors are
// swallowed so the original failure reaches the caller.
func (tx *Transaction) rollback(snaps map[string]snapshot, executed int) {
	for i := executed - 1; i >= 0; i-- {
		op := tx.ops[i]
		switch op.kind {
		case opMove:
			if err := os.Rename(op.path, op.src); err != nil {
				// A later rollback step may already have removed the
				// destination; fall back to the snapshotted source bytes.
				if s := snaps[op.src]; s.existed && !s.isDir {
					_ = os.WriteFile(op.src, s.content, s.mode)
					_ = os.Remove(op.path)
				}
			}
		case opRewrite:
			s := snaps[op.path]
			if s.existed {
				_ = os.WriteFile(op.path, s.content, s.mode)
			} else {
				_ = os.Remove(op.path)
			}
		case opDelete:
			s := snaps[op.path]
			if s.existed && !s.isDir {
				_ = os.WriteFile(op.path, s.content, s.mode)
			}
		}
	}
}
