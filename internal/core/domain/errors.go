package domain

import "go.trai.ch/zerr"

var (
	// ErrSoftFailure is matched by every expected, user-actionable failure.
	ErrSoftFailure = zerr.New("soft failure")

	// ErrBlockingError is returned when a deploy stops because one of its steps failed.
	ErrBlockingError = zerr.New("blocking error detected")

	// ErrReleaseNotFound is returned when a requested release is not configured.
	ErrReleaseNotFound = zerr.New("release not found")

	// ErrEnvironmentNotFound is returned when a requested environment is not configured.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrFeatureNotFound is returned when a release references a feature that doesn't exist.
	ErrFeatureNotFound = zerr.New("feature not found")

	// ErrTaskNotFound is returned when a recipe references a task that is neither built in nor defined.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoBaseRelease is returned when no release in the baseline chain has a complete set of backups.
	ErrNoBaseRelease = zerr.New("no valid base release")

	// ErrBaselineNotFound is returned when a release names a baseline that is not configured.
	ErrBaselineNotFound = zerr.New("baseline release not found")

	// ErrBaselineCycle is returned when following baselines revisits a release.
	ErrBaselineCycle = zerr.New("baseline cycle detected")

	// ErrResumeHashNotFound is returned when resuming without a resume marker.
	ErrResumeHashNotFound = zerr.New("resume hash not found")

	// ErrResumeHashInvalid is returned when the resume marker does not hold a valid hash.
	ErrResumeHashInvalid = zerr.New("invalid resume hash")

	// ErrRequirementsNotMet is returned when at least one declared requirement failed.
	ErrRequirementsNotMet = zerr.New("requirements not met")

	// ErrScriptExecutionFailed is returned when a SQL script reports errors or exits non-zero.
	ErrScriptExecutionFailed = zerr.New("script execution failed")

	// ErrInvalidStateHash is returned when a hex string cannot be decoded into a StateHash.
	ErrInvalidStateHash = zerr.New("invalid state hash")

	// ErrTransformerFinished is returned when a HashTransformer is used after Sum.
	ErrTransformerFinished = zerr.New("hash transformer already finished")

	// ErrInvalidNode is returned when an execution node has both a transform and children.
	ErrInvalidNode = zerr.New("execution node cannot have both a transform and children")

	// ErrConfigNotFound is returned when no project file is found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find dbbm.yaml in this directory or any parent")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrDuplicateName is returned when two features, tasks or releases share a name.
	ErrDuplicateName = zerr.New("duplicate name")

	// ErrCacheLockTimeout is returned when the hit-table lock cannot be acquired in time.
	ErrCacheLockTimeout = zerr.New("timed out waiting for cache lock")

	// ErrCacheReadFailed is returned when the hit-table cannot be read or decoded.
	ErrCacheReadFailed = zerr.New("failed to read hit table")

	// ErrCacheWriteFailed is returned when the hit-table cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write hit table")

	// ErrBackupFailed is returned when a database backup does not complete.
	ErrBackupFailed = zerr.New("database backup failed")

	// ErrRestoreFailed is returned when a database restore does not complete.
	ErrRestoreFailed = zerr.New("database restore failed")

	// ErrSQLCommandFailed is returned when the SQL client process cannot be started.
	ErrSQLCommandFailed = zerr.New("failed to run sql client")

	// ErrResumeWriteFailed is returned when the resume marker cannot be persisted.
	ErrResumeWriteFailed = zerr.New("failed to write resume marker")
)
