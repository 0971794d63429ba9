package tasks

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/statehash"
	"go.trai.ch/zerr"
)

const defaultSQLPattern = `(?i)\.sql$`

// SQLTask builds one script from a directory of SQL files and runs it.
//
// Parameters: path (relative to the feature directory), regex, execute
// (default true), output, templates.pre, templates.post and templates.item.
// The item template is expanded once per file with $(file) set to the file
// name and $(filePath) to its full path. A file whose name matches a group
// named env is only included when the active environment includes that value.
type SQLTask struct{}

type sqlFile struct {
	name     string
	path     string
	included bool
}

type sqlPlan struct {
	script string
	files  []sqlFile
}

// Name implements Task.
func (SQLTask) Name() string { return "sql" }

// Requirements implements Task.
func (SQLTask) Requirements(*Context, *execution.RequirementSink) {}

// Simulate implements Task.
func (t SQLTask) Simulate(_ context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	plan, err := t.plan(tc)
	if err != nil || plan == nil {
		return hash, err
	}
	return plan.hash(hash)
}

// Execute implements Task.
func (t SQLTask) Execute(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	plan, err := t.plan(tc)
	if err != nil || plan == nil {
		return hash, err
	}

	next, err := plan.hash(hash)
	if err != nil {
		return hash, err
	}

	log := tc.Log(ctx)
	for _, f := range plan.files {
		if f.included {
			log.Info("adding " + f.name)
		} else {
			log.Info("skipping " + f.name)
		}
	}

	if output, ok := tc.Param("output"); ok && output != "" {
		log.Info("generating " + output)
		if !tc.Env.DryRun {
			if err := writeScript(tc.ProjectPath(output), plan.script); err != nil {
				return hash, err
			}
		}
	}

	execute, err := strconv.ParseBool(tc.ParamOr("execute", "true"))
	if err != nil {
		return hash, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "execute", tc.Config.Parameters["execute"])
	}
	if !execute || tc.Env.DryRun {
		return next, nil
	}

	res, err := tc.Env.Backend.Exec(ctx, domain.SQLRequest{Script: plan.script}, func(line domain.OutputLine) {
		if line.Stream == domain.StreamStderr {
			log.Warn(line.Text)
		}
	})
	if err != nil {
		return hash, zerr.Wrap(err, domain.ErrSQLCommandFailed.Error())
	}
	if res.Failed() {
		return hash, domain.NewFailure(domain.ErrScriptExecutionFailed, "one or more errors occurred during scripts execution")
	}

	return next, nil
}

func (SQLTask) plan(tc *Context) (*sqlPlan, error) {
	pathParam, _ := tc.Param("path")
	dir := tc.FeaturePath(pathParam)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	re, err := regexp.Compile(tc.ParamOr("regex", defaultSQLPattern))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "regex", tc.Config.Parameters["regex"])
	}

	names, err := tc.Env.Files.ListFiles(dir, re.MatchString)
	if err != nil {
		return nil, err
	}

	envGroup := re.SubexpIndex("env")
	plan := &sqlPlan{files: make([]sqlFile, 0, len(names))}

	var b strings.Builder
	b.WriteString(tc.ParamOr("templates.pre", "") + "\n")
	for _, name := range names {
		f := sqlFile{name: name, path: filepath.Join(dir, name), included: true}

		if envGroup >= 0 {
			m := re.FindStringSubmatchIndex(name)
			if m != nil && m[2*envGroup] >= 0 {
				f.included = tc.Env.Environment.Accepts(name[m[2*envGroup]:m[2*envGroup+1]])
			}
		}

		if f.included {
			item, _ := tc.ParamWith("templates.item", map[string]string{"file": f.name, "filePath": f.path})
			b.WriteString(item + "\n")
		}
		plan.files = append(plan.files, f)
	}
	b.WriteString(tc.ParamOr("templates.post", "") + "\n")

	plan.script = b.String()
	return plan, nil
}

func (p *sqlPlan) hash(prev domain.StateHash) (domain.StateHash, error) {
	tr := statehash.New(prev)
	_, _ = tr.WriteString(p.script)
	for _, f := range p.files {
		if !f.included {
			continue
		}
		if err := tr.TransformFile(f.path); err != nil {
			return prev, err
		}
	}
	return tr.Sum()
}

func writeScript(path, script string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(script), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write script"), "path", path)
	}
	return nil
}
