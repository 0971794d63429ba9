package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/statehash"
	"go.trai.ch/zerr"
)

// CopyTask copies the files of a feature directory to a destination directory.
//
// Parameters: from (relative to the feature directory), to, and regex, which
// filters file names and defaults to every file.
type CopyTask struct{}

type copyPlan struct {
	from, to, target string
	files            []string
}

// Name implements Task.
func (CopyTask) Name() string { return "copy" }

// Requirements implements Task.
func (CopyTask) Requirements(*Context, *execution.RequirementSink) {}

// Simulate implements Task.
func (t CopyTask) Simulate(_ context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	plan, err := t.plan(tc)
	if err != nil || plan == nil {
		return hash, err
	}
	return plan.hash(hash)
}

// Execute implements Task.
func (t CopyTask) Execute(ctx context.Context, tc *Context, hash domain.StateHash) (domain.StateHash, error) {
	plan, err := t.plan(tc)
	if err != nil || plan == nil {
		return hash, err
	}

	next, err := plan.hash(hash)
	if err != nil {
		return hash, err
	}

	log := tc.Log(ctx)
	dryRun := tc.Env.DryRun

	if _, err := os.Stat(plan.target); err != nil {
		log.Info(fmt.Sprintf("creating directory %s", plan.to))
		if !dryRun {
			if err := os.MkdirAll(plan.target, domain.DirPerm); err != nil {
				return hash, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", plan.target)
			}
		}
	}

	for _, name := range plan.files {
		src := filepath.Join(plan.from, name)
		dst := filepath.Join(plan.target, name)

		if unchanged(tc, src, dst) {
			log.Info(fmt.Sprintf("skipping %s", name))
			continue
		}

		log.Info(fmt.Sprintf("copying %s -> %s", name, plan.to))
		if dryRun {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return hash, err
		}
	}

	return next, nil
}

func (CopyTask) plan(tc *Context) (*copyPlan, error) {
	fromParam, _ := tc.Param("from")
	from := tc.FeaturePath(fromParam)
	if info, err := os.Stat(from); err != nil || !info.IsDir() {
		return nil, nil
	}

	to, _ := tc.Param("to")
	re, err := regexp.Compile(tc.ParamOr("regex", ".*"))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "regex", tc.Config.Parameters["regex"])
	}

	files, err := tc.Env.Files.ListFiles(from, re.MatchString)
	if err != nil {
		return nil, err
	}

	return &copyPlan{from: from, to: to, target: tc.ProjectPath(to), files: files}, nil
}

func (p *copyPlan) hash(prev domain.StateHash) (domain.StateHash, error) {
	tr := statehash.New(prev)
	_, _ = tr.WriteString("copy\n" + filepath.ToSlash(p.to) + "\n")
	for _, name := range p.files {
		_, _ = tr.WriteString(name + "\n")
		if err := tr.TransformFile(filepath.Join(p.from, name)); err != nil {
			return prev, err
		}
	}
	return tr.Sum()
}

// unchanged reports whether dst already matches src by modification time or by content.
func unchanged(tc *Context, src, dst string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	if dstInfo.ModTime().Equal(srcInfo.ModTime()) {
		return true
	}
	if dstInfo.Size() != srcInfo.Size() || tc.Env.Hasher == nil {
		return false
	}

	a, err := tc.Env.Hasher.ComputeFileHash(src)
	if err != nil {
		return false
	}
	b, err := tc.Env.Hasher.ComputeFileHash(dst)
	return err == nil && a == b
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", src)
	}

	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.Mode().Perm()&0o200 == 0 {
		if err := os.Chmod(dst, dstInfo.Mode().Perm()|0o200); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to make file writable"), "path", dst)
		}
	}

	in, err := os.Open(src) //nolint:gosec // path comes from project configuration
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only handle

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.FilePerm) //nolint:gosec // destination is configured by the project
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set modification time"), "path", dst)
	}
	return nil
}
