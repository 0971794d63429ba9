package config

import "gopkg.in/yaml.v3"

// ProjectFile represents the structure of the dbbm.yaml configuration file.
type ProjectFile struct {
	Databases    []string                  `yaml:"databases"`
	Releases     string                    `yaml:"releases"`
	Features     string                    `yaml:"features"`
	Tasks        string                    `yaml:"tasks"`
	Environments map[string]EnvironmentDTO `yaml:"environments"`
}

// EnvironmentDTO represents one entry of the environments map.
type EnvironmentDTO struct {
	Description string   `yaml:"description"`
	Include     []string `yaml:"include"`
}

// ReleasesFile represents the structure of the releases file.
type ReleasesFile struct {
	DefaultRelease string       `yaml:"defaultRelease"`
	Releases       []ReleaseDTO `yaml:"releases"`
}

// ReleaseDTO represents a release definition.
type ReleaseDTO struct {
	Name     string   `yaml:"name"`
	Baseline string   `yaml:"baseline"`
	Features []string `yaml:"features"`
}

// FeatureFile represents the structure of a feature.yaml file.
type FeatureFile struct {
	Name   string    `yaml:"name"`
	Recipe yaml.Node `yaml:"recipe"`
}

// TaskFile represents the structure of a task definition file.
// Nodes are kept raw so that key order survives decoding.
type TaskFile struct {
	Name     string    `yaml:"name"`
	Define   yaml.Node `yaml:"define"`
	Require  yaml.Node `yaml:"require"`
	Commands yaml.Node `yaml:"commands"`
}

const (
	defaultReleasesFile = "releases.yaml"
	defaultFeaturesDir  = "features"
	defaultTasksDir     = "tasks"
)
