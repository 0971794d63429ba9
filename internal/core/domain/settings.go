package domain

import (
	"regexp"
	"time"
)

// Connection holds the parameters used to reach the database server.
type Connection struct {
	Server       string
	User         string
	Password     string
	Relocate     bool
	RelocatePath string
}

// BackupSource describes where release backups are found and how their names are parsed.
// Pattern has the named groups dbName and release, and optionally env.
type BackupSource struct {
	Root    string
	Pattern *regexp.Regexp
}

// CacheSettings configures the state cache.
type CacheSettings struct {
	Root          string
	MinDeployTime time.Duration
	Disabled      bool
	// MaxSize is the retained size limit in bytes. Negative disables eviction.
	MaxSize     int64
	AutoGC      bool
	Compression bool
}

// Settings is the per-user configuration.
type Settings struct {
	Environment  string
	Connection   Connection
	Backups      BackupSource
	EnvVariables map[string]string
	Cache        CacheSettings
	SQLCmdPath   string
}
