package ledger

import (
	"errors"
	"fmt"

	"go.trai.ch/pwa/internal/core/domain"
)

// Op names the rollback step that failed.
type Op string

const (
	OpRestore   Op = "restore"
	OpRemove    Op = "remove"
	OpRemoveDir Op = "remove directory"
)

// Failure is one path rollback could not handle.
type Failure struct {
	Path string
	Op   Op
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// RollbackReport describes what a rollback did.
type RollbackReport struct {
	Restored []string
	Removed  []string
	// RemovedDirs are directories this run created and rollback removed again.
	RemovedDirs      []string
	RemovedOutputDir bool
	Failures         []Failure
}

// Complete reports whether every path was handled.
func (r RollbackReport) Complete() bool {
	return len(r.Failures) == 0
}

// Err returns nil for a complete rollback, otherwise ErrRollbackIncomplete joined with every failure.
func (r RollbackReport) Err() error {
	if r.Complete() {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, domain.ErrRollbackIncomplete)
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
