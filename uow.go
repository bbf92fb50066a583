package stdnames

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/plasmakit/stdnames/model"
)

// State is the lifecycle state of a unit of work.
type State string

const (
	// StateOpen means the unit of work has no staged mutations yet.
	StateOpen State = "open"
	// StateStaged means at least one mutation is staged.
	StateStaged State = "staged"
	// StateCommitted means Commit succeeded; the unit of work is closed.
	StateCommitted State = "committed"
	// StateAborted means Abort was called or a commit failed validation;
	// the unit of work is closed.
	StateAborted State = "aborted"
)

// UnitOfWork stages additions, updates and removals against a catalog
// and applies them atomically on Commit. Staged mutations are invisible
// to catalog reads until committed.
//
// Commit validates the whole candidate catalog (current entries minus
// removals plus staged entries). If any rule is violated, nothing is
// written, the unit of work aborts and the writer slot is released;
// the returned report tells the caller what to fix in a fresh unit of
// work.
type UnitOfWork struct {
	catalog *Catalog

	mu      sync.Mutex
	state   State
	staged  map[string]*model.Entry
	removed map[string]struct{}
}

// State returns the current lifecycle state.
func (u *UnitOfWork) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state
}

// StageAdd stages a new entry. Fails with ErrExists if the name is
// already present in the catalog or staged in this unit of work.
func (u *UnitOfWork) StageAdd(e *model.Entry) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.writable(); err != nil {
		return err
	}
	if e == nil || e.Name == "" {
		return fmt.Errorf("staged entry needs a name")
	}
	if u.present(e.Name) {
		return fmt.Errorf("%w: %q", ErrExists, e.Name)
	}
	delete(u.removed, e.Name)
	u.staged[e.Name] = e.Clone()
	u.state = StateStaged
	return nil
}

// StageUpdate stages a replacement for an existing entry.
func (u *UnitOfWork) StageUpdate(e *model.Entry) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.writable(); err != nil {
		return err
	}
	if e == nil || e.Name == "" {
		return fmt.Errorf("staged entry needs a name")
	}
	if !u.present(e.Name) {
		return fmt.Errorf("%w: %q", ErrNotFound, e.Name)
	}
	u.staged[e.Name] = e.Clone()
	u.state = StateStaged
	return nil
}

// StageRemove stages removal of an entry. The removal only commits if
// no remaining entry still depends on the removed name.
func (u *UnitOfWork) StageRemove(name string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.writable(); err != nil {
		return err
	}
	if !u.present(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(u.staged, name)
	u.removed[name] = struct{}{}
	u.state = StateStaged
	return nil
}

// StageRename stages removal of oldName and addition of the updated
// entry under its new name. References held by other entries are not
// rewritten; if any dependent still points at oldName, Commit reports
// the dangling reference and the caller must stage updates for the
// dependents too.
func (u *UnitOfWork) StageRename(oldName string, updated *model.Entry) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.writable(); err != nil {
		return err
	}
	if updated == nil || updated.Name == "" {
		return fmt.Errorf("staged entry needs a name")
	}
	if updated.Name == oldName {
		return fmt.Errorf("%w: rename target equals %q", ErrExists, oldName)
	}
	if !u.present(oldName) {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if u.present(updated.Name) {
		return fmt.Errorf("%w: %q", ErrExists, updated.Name)
	}
	delete(u.staged, oldName)
	u.removed[oldName] = struct{}{}
	delete(u.removed, updated.Name)
	u.staged[updated.Name] = updated.Clone()
	u.state = StateStaged
	return nil
}

// Get returns the entry as this unit of work sees it: staged version
// first, then the committed catalog state. Removed names are absent.
func (u *UnitOfWork) Get(name string) (*model.Entry, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateCommitted || u.state == StateAborted {
		return nil, ErrUnitOfWorkClosed
	}
	if e, ok := u.staged[name]; ok {
		return e.Clone(), nil
	}
	if _, gone := u.removed[name]; gone {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return u.catalog.Get(name)
}

// Commit validates the candidate catalog and, if every rule holds,
// persists the staged mutations and makes them visible to readers.
//
// On validation failure Commit returns the report alongside
// ErrValidationFailed, discards the staged mutations and transitions to
// StateAborted, releasing the writer slot. Nothing is written to disk
// in that case.
func (u *UnitOfWork) Commit(ctx context.Context) (*Report, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateCommitted || u.state == StateAborted {
		return nil, ErrUnitOfWorkClosed
	}

	c := u.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	start := time.Now()

	candidate := make(map[string]*model.Entry, len(c.entries)+len(u.staged))
	for name, e := range c.entries {
		if _, gone := u.removed[name]; gone {
			continue
		}
		candidate[name] = e
	}
	for name, e := range u.staged {
		candidate[name] = e
	}

	report := c.validateAll(candidate)
	if !report.Empty() {
		err := ErrValidationFailed
		c.opts.metricsCollector.RecordCommit(len(u.staged), report.Count(), time.Since(start), err)
		c.opts.logger.LogCommit(ctx, len(u.staged), len(u.removed), report.Count(), err)
		u.state = StateAborted
		u.staged = nil
		u.removed = nil
		c.uowActive = false
		return report, err
	}

	if err := u.persist(); err != nil {
		c.opts.metricsCollector.RecordCommit(len(u.staged), 0, time.Since(start), err)
		c.opts.logger.LogCommit(ctx, len(u.staged), len(u.removed), 0, err)
		return nil, err
	}

	for name := range u.removed {
		delete(c.entries, name)
	}
	for name, e := range u.staged {
		c.entries[name] = e
	}

	// The commit is durable once persisted; an index failure is reported
	// but does not undo it or leave the writer slot held.
	var indexErr error
	for name := range u.removed {
		if err := c.index.Delete(name); err != nil && indexErr == nil {
			indexErr = err
		}
	}
	for name, e := range u.staged {
		if err := c.index.Add(name, docText(e)); err != nil && indexErr == nil {
			indexErr = err
		}
	}

	u.state = StateCommitted
	c.uowActive = false
	c.opts.metricsCollector.RecordCommit(len(u.staged), 0, time.Since(start), indexErr)
	c.opts.logger.LogCommit(ctx, len(u.staged), len(u.removed), 0, indexErr)
	return report, indexErr
}

// persist writes staged entries and removes deleted ones. An entry whose
// primary tag changed moves to its new directory. Caller holds both
// locks.
func (u *UnitOfWork) persist() error {
	c := u.catalog

	names := make([]string, 0, len(u.staged))
	for name := range u.staged {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := u.staged[name]
		if prev, ok := c.entries[name]; ok && c.store.PathFor(prev) != c.store.PathFor(e) {
			if err := c.store.Remove(prev); err != nil {
				return err
			}
		}
		if err := c.store.Write(e); err != nil {
			return err
		}
	}

	gone := make([]string, 0, len(u.removed))
	for name := range u.removed {
		gone = append(gone, name)
	}
	sort.Strings(gone)

	for _, name := range gone {
		prev, ok := c.entries[name]
		if !ok {
			continue
		}
		if err := c.store.Remove(prev); err != nil {
			return err
		}
	}
	return nil
}

// Abort discards all staged mutations and releases the writer slot.
func (u *UnitOfWork) Abort() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateCommitted || u.state == StateAborted {
		return ErrUnitOfWorkClosed
	}

	c := u.catalog
	c.mu.Lock()
	c.uowActive = false
	c.mu.Unlock()

	u.staged = nil
	u.removed = nil
	u.state = StateAborted
	return nil
}

func (u *UnitOfWork) writable() error {
	if u.state == StateCommitted || u.state == StateAborted {
		return ErrUnitOfWorkClosed
	}
	return nil
}

// present reports whether the name exists from this unit of work's
// viewpoint.
func (u *UnitOfWork) present(name string) bool {
	if _, ok := u.staged[name]; ok {
		return true
	}
	if _, gone := u.removed[name]; gone {
		return false
	}
	return u.catalog.Has(name)
}
