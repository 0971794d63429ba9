package ports

import "go.trai.ch/dbbm/internal/core/domain"

// ResumeStore persists the last state reached by a deploy.
//
//go:generate mockgen -source=resume.go -destination=mocks/mock_resume.go -package=mocks
type ResumeStore interface {
	// Load returns the persisted hash.
	Load() (domain.StateHash, error)
	// Save persists hash, replacing any previous value.
	Save(hash domain.StateHash) error
	// Clear removes the marker. A missing marker is not an error.
	Clear() error
}
