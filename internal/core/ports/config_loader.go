package ports

import "go.trai.ch/dbbm/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds dbbm.yaml at cwd or above and loads the project it describes.
	Load(cwd string) (*domain.Project, error)
}

// SettingsLoader loads the per-user settings of a project.
type SettingsLoader interface {
	// LoadSettings reads settings for the project rooted at projectRoot.
	// If path is non-empty it is used instead of the default search.
	LoadSettings(projectRoot, path string) (*domain.Settings, error)
}
