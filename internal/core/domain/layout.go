package domain

import "path/filepath"

const (
	// DbbmDirName is the name of the per-project metadata directory.
	DbbmDirName = ".dbbm"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "dbbm.yaml"

	// UserSettingsName is the user settings file name without extension.
	UserSettingsName = ".dbbm.user"

	// ResumeFileName is the name of the resume marker stored in the project root.
	ResumeFileName = ".dbbm.resume"

	// FeatureFileName is the name of a feature definition file.
	FeatureFileName = "feature.yaml"

	// CacheDirName is the name of the default cache directory inside DbbmDirName.
	CacheDirName = "cache"

	// CachesDirName is the directory below the cache root holding one directory per database.
	CachesDirName = "caches"

	// HitTableFileName is the name of the hit-table below the cache root.
	HitTableFileName = "hit.json"

	// HitTableLockFileName is the lock file guarding the hit-table.
	HitTableLockFileName = "hit.json.lock"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the default cache root for a project.
// It joins the project root, .dbbm and cache.
func DefaultCachePath(projectRoot string) string {
	return filepath.Join(projectRoot, DbbmDirName, CacheDirName)
}

// ResumeFilePath returns the location of the resume marker for a project.
func ResumeFilePath(projectRoot string) string {
	return filepath.Join(projectRoot, ResumeFileName)
}

// CacheEntryPath returns the backup file location for a database at a given state.
func CacheEntryPath(cacheRoot, dbName string, hash StateHash) string {
	return filepath.Join(cacheRoot, CachesDirName, dbName, hash.String())
}
