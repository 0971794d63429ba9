package domain

import "slices"

// TaskConfig is one invocation in a recipe: a task name plus flattened parameters.
type TaskConfig struct {
	Name       string
	Parameters map[string]string
}

// Recipe is an ordered list of task invocations.
type Recipe []TaskConfig

// Feature is a named recipe whose relative paths resolve against BaseDirectory.
type Feature struct {
	Name          string
	BaseDirectory string
	Recipe        Recipe
}

// Requirement is a precondition declared by a task definition.
type Requirement struct {
	Type string
	Args []string
}

// TaskDefinition is a user-defined composite task.
type TaskDefinition struct {
	Name     string
	Define   map[string]string
	Require  []Requirement
	Commands map[string]Recipe
}

// Recipe returns the recipe registered for action.
func (d *TaskDefinition) Recipe(action string) (Recipe, bool) {
	r, ok := d.Commands[action]
	return r, ok
}

// Release is an ordered list of features applied on top of an optional baseline release.
type Release struct {
	Name     string
	Baseline string
	Features []string
}

// Releases is the ordered set of configured releases.
type Releases struct {
	Default string
	List    []Release
}

// Find returns the release with the given name.
func (r Releases) Find(name string) (Release, bool) {
	for _, rel := range r.List {
		if rel.Name == name {
			return rel, true
		}
	}
	return Release{}, false
}

// Environment selects which environment-specific scripts are applied.
type Environment struct {
	Name        string
	Description string
	Include     []string
}

// Accepts reports whether an environment tag found in a script name is included.
func (e Environment) Accepts(tag string) bool {
	return slices.Contains(e.Include, tag)
}

// Project is the fully loaded project configuration.
type Project struct {
	Root         string
	Databases    []string
	Environments map[string]Environment
	Releases     Releases
	Features     map[string]*Feature
	Tasks        map[string]*TaskDefinition
}
