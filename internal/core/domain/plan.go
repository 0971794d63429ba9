package domain

// DatabaseBackupInfo names the backup file a database is restored from.
type DatabaseBackupInfo struct {
	Name           string
	BackupFilePath string
}

// ActionPlan is the starting snapshot and the releases to apply on top of it, oldest first.
type ActionPlan struct {
	Databases []DatabaseBackupInfo
	Releases  []Release
}
