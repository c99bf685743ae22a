package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when the config file parses but contains invalid values.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrUnknownPreset is returned when the config references a caching preset that does not exist.
	ErrUnknownPreset = zerr.New("unknown caching preset")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrProjectRootNotDir is returned when the project root is not an existing directory.
	ErrProjectRootNotDir = zerr.New("project root is not a directory")

	// ErrScanFailed is returned when the project scanner fails.
	ErrScanFailed = zerr.New("project scan failed")

	// ErrCacheEncodeFailed is returned when the scan cache document cannot be marshaled.
	ErrCacheEncodeFailed = zerr.New("failed to encode scan cache")

	// ErrCacheWriteFailed is returned when the scan cache document cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write scan cache")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathOutsideRoot is returned when a ledger path resolves outside the project root.
	ErrPathOutsideRoot = zerr.New("path is outside project root")

	// ErrBackupFailed is returned when the prior content of a file cannot be captured.
	// It is fatal to the run: a mutation without a snapshot cannot be rolled back.
	ErrBackupFailed = zerr.New("failed to back up file")

	// ErrLedgerClosed is returned when a ledger that already left the pending state is mutated.
	ErrLedgerClosed = zerr.New("transaction ledger is no longer pending")

	// ErrArtifactWriteFailed is returned when a generated artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write artifact")

	// ErrInvalidPattern is returned when a route pattern cannot be compiled.
	ErrInvalidPattern = zerr.New("invalid route pattern")

	// ErrInvalidRoute is returned when a route declaration fails validation.
	ErrInvalidRoute = zerr.New("invalid route")

	// ErrInvalidPolicy is returned when a caching policy fails validation.
	ErrInvalidPolicy = zerr.New("invalid caching policy")

	// ErrGenerationFailed is returned when a generation run fails and was rolled back.
	ErrGenerationFailed = zerr.New("generation failed")

	// ErrRollbackIncomplete is returned when a rollback could not restore every path.
	ErrRollbackIncomplete = zerr.New("rollback incomplete")
)
