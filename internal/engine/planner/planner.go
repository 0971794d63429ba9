// Package planner picks the backup set a deploy starts from and the releases applied on top of it.
package planner

import (
	"path/filepath"
	"slices"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Request describes what to plan.
type Request struct {
	Databases   []string
	Releases    domain.Releases
	Release     domain.Release
	Environment string
	Backups     domain.BackupSource
}

// Planner builds action plans from the backups available on disk.
type Planner struct {
	files ports.FileLister
}

// New creates a Planner enumerating backups through files.
func New(files ports.FileLister) *Planner {
	return &Planner{files: files}
}

// backupIndex maps release -> environment -> database -> backup path.
// Backups without an env group are stored under the empty environment.
type backupIndex map[string]map[string]map[string]string

// Plan walks the baseline chain from the requested release until it finds a release
// with a backup for every database. The returned releases run oldest first and do not
// include the release the backups belong to.
func (p *Planner) Plan(req Request) (domain.ActionPlan, error) {
	index, err := p.index(req.Backups)
	if err != nil {
		return domain.ActionPlan{}, err
	}

	var stack []domain.Release
	visited := make(map[string]bool)
	head := req.Release

	for {
		if visited[head.Name] {
			return domain.ActionPlan{}, domain.NewFailure(domain.ErrBaselineCycle, "baseline cycle detected at %s", head.Name)
		}
		visited[head.Name] = true

		if dbs := selectBackups(index[head.Name], req.Databases, req.Environment); dbs != nil {
			slices.Reverse(stack)
			return domain.ActionPlan{Databases: dbs, Releases: stack}, nil
		}

		stack = append(stack, head)

		if head.Baseline == "" {
			return domain.ActionPlan{}, domain.NewFailure(domain.ErrNoBaseRelease,
				"cannot find a valid base to start. Last release found: %s", head.Name)
		}

		next, ok := req.Releases.Find(head.Baseline)
		if !ok {
			return domain.ActionPlan{}, domain.NewFailure(domain.ErrBaselineNotFound,
				"cannot find release %s (baseline of %s)", head.Baseline, head.Name)
		}
		head = next
	}
}

func (p *Planner) index(src domain.BackupSource) (backupIndex, error) {
	if src.Pattern == nil {
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "databases.backups.pattern")
	}

	names, err := p.files.ListFiles(src.Root, src.Pattern.MatchString)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to enumerate backups")
	}

	dbGroup := src.Pattern.SubexpIndex("dbName")
	releaseGroup := src.Pattern.SubexpIndex("release")
	envGroup := src.Pattern.SubexpIndex("env")
	if dbGroup < 0 || releaseGroup < 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "pattern", src.Pattern.String())
	}

	index := make(backupIndex)
	for _, name := range names {
		m := src.Pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		release, db := m[releaseGroup], m[dbGroup]
		env := ""
		if envGroup >= 0 {
			env = m[envGroup]
		}

		byEnv, ok := index[release]
		if !ok {
			byEnv = make(map[string]map[string]string)
			index[release] = byEnv
		}
		byDB, ok := byEnv[env]
		if !ok {
			byDB = make(map[string]string)
			byEnv[env] = byDB
		}
		byDB[db] = filepath.Join(src.Root, name)
	}

	return index, nil
}

// selectBackups prefers the requested environment and otherwise takes the first
// complete environment in name order.
func selectBackups(byEnv map[string]map[string]string, databases []string, preferred string) []domain.DatabaseBackupInfo {
	if byEnv == nil {
		return nil
	}

	if preferred != "" {
		if dbs := complete(byEnv[preferred], databases); dbs != nil {
			return dbs
		}
	}

	envs := make([]string, 0, len(byEnv))
	for env := range byEnv {
		envs = append(envs, env)
	}
	slices.Sort(envs)

	for _, env := range envs {
		if dbs := complete(byEnv[env], databases); dbs != nil {
			return dbs
		}
	}
	return nil
}

func complete(byDB map[string]string, databases []string) []domain.DatabaseBackupInfo {
	if byDB == nil {
		return nil
	}

	result := make([]domain.DatabaseBackupInfo, 0, len(databases))
	for _, db := range databases {
		path, ok := byDB[db]
		if !ok {
			return nil
		}
		result = append(result, domain.DatabaseBackupInfo{Name: db, BackupFilePath: path})
	}
	return result
}
