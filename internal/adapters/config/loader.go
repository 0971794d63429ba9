// Package config provides the project and user settings loaders for dbbm.
package config

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// FileWalker enumerates files by base name below a directory.
type FileWalker interface {
	WalkFiles(root, name string) iter.Seq[string]
}

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
	Walker FileWalker
}

// NewLoader creates a new Loader with the given logger and walker.
func NewLoader(logger ports.Logger, walker FileWalker) *Loader {
	return &Loader{Logger: logger, Walker: walker}
}

// Load finds dbbm.yaml at cwd or above and loads the project it describes.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var file ProjectFile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	applyProjectDefaults(&file)

	if len(file.Databases) == 0 {
		return nil, zerr.With(zerr.With(domain.ErrInvalidConfig, "field", "databases"), "path", configPath)
	}

	root := filepath.Dir(configPath)
	project := &domain.Project{
		Root:         root,
		Databases:    file.Databases,
		Environments: buildEnvironments(file.Environments),
	}

	if project.Releases, err = loadReleases(resolvePath(root, file.Releases)); err != nil {
		return nil, err
	}
	if project.Features, err = l.loadFeatures(resolvePath(root, file.Features)); err != nil {
		return nil, err
	}
	if project.Tasks, err = l.loadTasks(resolvePath(root, file.Tasks)); err != nil {
		return nil, err
	}

	return project, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ProjectFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func applyProjectDefaults(file *ProjectFile) {
	if file.Releases == "" {
		file.Releases = defaultReleasesFile
	}
	if file.Features == "" {
		file.Features = defaultFeaturesDir
	}
	if file.Tasks == "" {
		file.Tasks = defaultTasksDir
	}
}

func buildEnvironments(dtos map[string]EnvironmentDTO) map[string]domain.Environment {
	envs := make(map[string]domain.Environment, len(dtos))
	for name, dto := range dtos {
		envs[name] = domain.Environment{
			Name:        name,
			Description: dto.Description,
			Include:     slices.Clone(dto.Include),
		}
	}
	return envs
}

func loadReleases(path string) (domain.Releases, error) {
	var file ReleasesFile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return domain.Releases{}, zerr.With(err, "path", path)
	}

	releases := domain.Releases{Default: file.DefaultRelease}
	seen := make(map[string]bool, len(file.Releases))
	for _, dto := range file.Releases {
		if dto.Name == "" {
			return domain.Releases{}, zerr.With(zerr.With(domain.ErrInvalidConfig, "field", "releases.name"), "path", path)
		}
		if seen[dto.Name] {
			err := zerr.With(domain.ErrDuplicateName, "release", dto.Name)
			return domain.Releases{}, zerr.With(err, "path", path)
		}
		seen[dto.Name] = true

		releases.List = append(releases.List, domain.Release{
			Name:     dto.Name,
			Baseline: dto.Baseline,
			Features: slices.Clone(dto.Features),
		})
	}
	return releases, nil
}

func (l *Loader) loadFeatures(dir string) (map[string]*domain.Feature, error) {
	features := make(map[string]*domain.Feature)
	if !isDir(dir) {
		l.Logger.Warn(fmt.Sprintf("features directory %s not found", dir))
		return features, nil
	}

	paths := slices.Collect(l.Walker.WalkFiles(dir, domain.FeatureFileName))
	err := parseConcurrently(paths, parseFeature, func(f *domain.Feature, path string) error {
		if _, exists := features[f.Name]; exists {
			return zerr.With(zerr.With(domain.ErrDuplicateName, "feature", f.Name), "path", path)
		}
		features[f.Name] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (l *Loader) loadTasks(dir string) (map[string]*domain.TaskDefinition, error) {
	tasks := make(map[string]*domain.TaskDefinition)
	if !isDir(dir) {
		return tasks, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ".yaml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	err = parseConcurrently(paths, parseTask, func(t *domain.TaskDefinition, path string) error {
		if _, exists := tasks[t.Name]; exists {
			return zerr.With(zerr.With(domain.ErrDuplicateName, "task", t.Name), "path", path)
		}
		tasks[t.Name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// parseConcurrently parses every path on a bounded errgroup and hands the
// results to collect in path order.
func parseConcurrently[T any](paths []string, parse func(string) (T, error), collect func(T, string) error) error {
	results := make([]T, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			v, err := parse(path)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, v := range results {
		if err := collect(v, paths[i]); err != nil {
			return err
		}
	}
	return nil
}

func parseFeature(path string) (*domain.Feature, error) {
	var file FeatureFile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	recipe, err := parseRecipe(&file.Recipe)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	dir := filepath.Dir(path)
	name := file.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	return &domain.Feature{Name: name, BaseDirectory: dir, Recipe: recipe}, nil
}

func parseTask(path string) (*domain.TaskDefinition, error) {
	var file TaskFile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	def := &domain.TaskDefinition{Name: file.Name, Define: map[string]string{}}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := flatten(&file.Define, "", def.Define); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	var err error
	if def.Require, err = parseRequire(&file.Require); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if def.Commands, err = parseCommands(&file.Commands); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	return def, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is resolved from the project root
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var _ ports.ConfigLoader = (*Loader)(nil)
