package ports

// FileHasher computes fast content hashes used for change detection.
//
//go:generate mockgen -source=files.go -destination=mocks/mock_files.go -package=mocks
type FileHasher interface {
	// ComputeFileHash returns the content hash of the file at path.
	ComputeFileHash(path string) (uint64, error)
}

// FileLister enumerates the files of a directory.
type FileLister interface {
	// ListFiles returns the names of the regular files directly inside dir
	// for which match returns true, in natural order.
	ListFiles(dir string, match func(name string) bool) ([]string, error)
}
