// Package ledger makes a multi-file generation run atomic. Every pre-existing file is
// backed up before its first mutation and every new file is tracked, so a failed run
// can be rolled back to the directory's prior state.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/pwa/internal/engine/atomicfile"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.Transaction = (*Ledger)(nil)

// State is the lifecycle state of a ledger.
type State int

const (
	// Pending ledgers accept backups and created-file tracking.
	Pending State = iota
	// Committed ledgers have released their backups.
	Committed
	// RolledBack ledgers have restored the directory.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type backupRecord struct {
	data []byte
	mode fs.FileMode
}

// Ledger records backups and created files for one generation run.
// It is safe for concurrent use.
type Ledger struct {
	root         string
	outputSubdir string

	group singleflight.Group

	mu          sync.Mutex
	state       State
	backups     map[string]backupRecord
	absent      map[string]bool
	created     map[string]bool
	createdDirs map[string]bool
}

// Begin opens a pending ledger for rootDir. outputSubdir, when not empty, names the
// artifact directory below rootDir; rollback removes it and any missing parent again
// if this run created them.
func Begin(rootDir, outputSubdir string) (*Ledger, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "root", rootDir)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrProjectRootNotDir, "failed to begin transaction"), "root", root)
	}

	l := &Ledger{
		root:        root,
		backups:     make(map[string]backupRecord),
		absent:      make(map[string]bool),
		created:     make(map[string]bool),
		createdDirs: make(map[string]bool),
	}

	if outputSubdir != "" {
		sub, err := l.clean(outputSubdir)
		if err != nil {
			return nil, err
		}
		l.outputSubdir = sub
		l.trackMissingDirs(sub)
	}

	return l, nil
}

// Root returns the absolute project root.
func (l *Ledger) Root() string {
	return l.root
}

// OutputDir returns the artifact directory relative to the root, slash separated.
func (l *Ledger) OutputDir() string {
	return l.outputSubdir
}

// BackupFile captures the prior bytes of relPath before its first mutation.
// Repeated calls, paths that do not exist yet, and paths this run created are no-ops.
// A returned error means the path must not be mutated.
func (l *Ledger) BackupFile(relPath string) error {
	key, err := l.clean(relPath)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.state != Pending {
		l.mu.Unlock()
		return zerr.With(zerr.Wrap(domain.ErrLedgerClosed, "backup"), "path", key)
	}
	done := l.seen(key)
	l.mu.Unlock()
	if done {
		return nil
	}

	_, err, _ = l.group.Do(key, func() (any, error) {
		return nil, l.capture(key)
	})
	return err
}

func (l *Ledger) capture(key string) error {
	l.mu.Lock()
	done := l.seen(key)
	l.mu.Unlock()
	if done {
		return nil
	}

	full := l.abs(key)
	info, err := os.Lstat(full)
	if errors.Is(err, fs.ErrNotExist) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if !l.seen(key) {
			l.absent[key] = true
		}
		return nil
	}
	if err != nil {
		return backupError(err, key)
	}
	if !info.Mode().IsRegular() {
		return backupError(zerr.New("not a regular file"), key)
	}

	data, err := os.ReadFile(full) //nolint:gosec // Path is confined to the ledger root
	if err != nil {
		return backupError(err, key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Pending {
		return zerr.With(zerr.Wrap(domain.ErrLedgerClosed, "backup"), "path", key)
	}
	if !l.seen(key) {
		l.backups[key] = backupRecord{data: data, mode: info.Mode().Perm()}
	}
	return nil
}

// seen reports whether key already has a backup decision. Callers hold mu.
func (l *Ledger) seen(key string) bool {
	if _, ok := l.backups[key]; ok {
		return true
	}
	return l.absent[key] || l.created[key]
}

// TrackCreatedFile records relPath as created by this run. Backed-up paths are never tracked.
func (l *Ledger) TrackCreatedFile(relPath string) error {
	key, err := l.clean(relPath)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Pending {
		return zerr.With(zerr.Wrap(domain.ErrLedgerClosed, "track created file"), "path", key)
	}
	if _, ok := l.backups[key]; ok {
		return nil
	}
	delete(l.absent, key)
	l.created[key] = true
	return nil
}

// WriteFile backs up relPath, writes data atomically, and tracks relPath as created when
// it did not exist before the run.
func (l *Ledger) WriteFile(relPath string, data []byte, perm fs.FileMode) error {
	if err := l.BackupFile(relPath); err != nil {
		return err
	}

	key, err := l.clean(relPath)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.trackMissingDirs(path.Dir(key))
	l.mu.Unlock()

	if err := atomicfile.WriteFile(l.abs(key), data, perm); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrArtifactWriteFailed, err), "path", key)
	}

	if l.State().HasBackup(key) {
		return nil
	}
	return l.TrackCreatedFile(key)
}

// Commit releases the ledger. Files already written stay as they are.
// Committing twice is a no-op; committing after a rollback fails with ErrLedgerClosed.
func (l *Ledger) Commit() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Committed:
		return nil
	case RolledBack:
		return zerr.Wrap(domain.ErrLedgerClosed, "commit")
	}

	l.state = Committed
	for key, rec := range l.backups {
		rec.data = nil
		l.backups[key] = rec
	}
	return nil
}

// Rollback restores every backed-up path, then removes every created path that still
// exists, then removes the directories this run created, deepest first, while they are empty.
// Individual failures are collected in the report. Only the first call does any work.
func (l *Ledger) Rollback() RollbackReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	var report RollbackReport
	if l.state != Pending {
		return report
	}
	l.state = RolledBack

	for _, key := range sortedKeys(l.backups) {
		rec := l.backups[key]
		if err := atomicfile.WriteFile(l.abs(key), rec.data, rec.mode); err != nil {
			report.Failures = append(report.Failures, Failure{Path: key, Op: OpRestore, Err: err})
			continue
		}
		report.Restored = append(report.Restored, key)
	}

	for _, key := range sortedKeys(l.created) {
		err := os.Remove(l.abs(key))
		switch {
		case err == nil:
			report.Removed = append(report.Removed, key)
		case errors.Is(err, fs.ErrNotExist):
		default:
			report.Failures = append(report.Failures, Failure{Path: key, Op: OpRemove, Err: err})
		}
	}

	for _, dir := range deepestFirst(l.createdDirs) {
		entries, err := os.ReadDir(l.abs(dir))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err == nil && len(entries) > 0:
			continue
		case err == nil:
			err = os.Remove(l.abs(dir))
		}
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: dir, Op: OpRemoveDir, Err: err})
			continue
		}
		report.RemovedDirs = append(report.RemovedDirs, dir)
		if dir == l.outputSubdir {
			report.RemovedOutputDir = true
		}
	}

	for key, rec := range l.backups {
		rec.data = nil
		l.backups[key] = rec
	}
	return report
}

// Snapshot is a read-only view of a ledger.
type Snapshot struct {
	State    State
	BackedUp []string
	Created  []string
}

// HasBackup reports whether path was backed up.
func (s Snapshot) HasBackup(path string) bool {
	i := sort.SearchStrings(s.BackedUp, path)
	return i < len(s.BackedUp) && s.BackedUp[i] == path
}

// HasCreated reports whether path is tracked as created.
func (s Snapshot) HasCreated(path string) bool {
	i := sort.SearchStrings(s.Created, path)
	return i < len(s.Created) && s.Created[i] == path
}

// State returns a snapshot with sorted, slash-separated paths.
func (l *Ledger) State() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		State:    l.state,
		BackedUp: sortedKeys(l.backups),
		Created:  sortedKeys(l.created),
	}
}

// trackMissingDirs records dir and each missing parent up to the first one that exists.
// Callers hold mu, or own the ledger exclusively.
func (l *Ledger) trackMissingDirs(dir string) {
	for ; dir != "." && dir != "/" && !l.createdDirs[dir]; dir = path.Dir(dir) {
		if _, err := os.Lstat(l.abs(dir)); err == nil {
			return
		}
		l.createdDirs[dir] = true
	}
}

// deepestFirst orders directories so children come before their parents.
func deepestFirst(dirs map[string]bool) []string {
	keys := sortedKeys(dirs)
	sort.SliceStable(keys, func(i, j int) bool {
		return strings.Count(keys[i], "/") > strings.Count(keys[j], "/")
	})
	return keys
}

// clean turns relPath into a slash-separated path relative to the root.
func (l *Ledger) clean(relPath string) (string, error) {
	p := relPath
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrPathOutsideRoot, "invalid ledger path"), "path", relPath)
		}
		p = rel
	}

	p = filepath.ToSlash(filepath.Clean(p))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", zerr.With(zerr.Wrap(domain.ErrPathOutsideRoot, "invalid ledger path"), "path", relPath)
	}
	return p, nil
}

func (l *Ledger) abs(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func backupError(err error, key string) error {
	return zerr.With(fmt.Errorf("%w: %w", domain.ErrBackupFailed, err), "path", key)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
