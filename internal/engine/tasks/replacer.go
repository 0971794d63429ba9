package tasks

import (
	"maps"
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
)

// maxPasses bounds substitution for values that keep expanding.
const maxPasses = 32

// Replacer substitutes $(key) references. $$ is an escaped dollar sign and
// unknown keys expand to the empty string.
type Replacer struct {
	vars map[string]string
}

// NewReplacer creates a Replacer over a copy of vars.
func NewReplacer(vars map[string]string) *Replacer {
	return &Replacer{vars: maps.Clone(vars)}
}

// ForFeature creates the top-level Replacer of a task invocation inside a feature.
func ForFeature(projectRoot string, envVariables map[string]string, feature *domain.Feature, cfg domain.TaskConfig) *Replacer {
	vars := map[string]string{
		"projectRoot":     projectRoot,
		"f:name":          feature.Name,
		"f:baseDirectory": feature.BaseDirectory,
	}
	for k, v := range envVariables {
		vars["e:"+k] = v
	}
	maps.Copy(vars, cfg.Parameters)
	return &Replacer{vars: vars}
}

// Lookup returns the raw value of key.
func (r *Replacer) Lookup(key string) (string, bool) {
	v, ok := r.vars[key]
	return v, ok
}

// With returns a Replacer with extra layered on top.
func (r *Replacer) With(extra map[string]string) *Replacer {
	vars := maps.Clone(r.vars)
	if vars == nil {
		vars = make(map[string]string, len(extra))
	}
	maps.Copy(vars, extra)
	return &Replacer{vars: vars}
}

// WithSubTask returns the Replacer of a sub-task invoked by def: the current
// variables, then the sub-task parameters, then the definitions of def.
func (r *Replacer) WithSubTask(def *domain.TaskDefinition, cfg domain.TaskConfig) *Replacer {
	return r.With(cfg.Parameters).With(def.Define)
}

// Replace expands every reference in s until the value stops changing.
func (r *Replacer) Replace(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}

	for range maxPasses {
		next := r.pass(s)
		if next == s {
			break
		}
		s = next
	}
	return strings.ReplaceAll(s, "$$", "$")
}

// pass expands one level of references, leaving escapes in place.
func (r *Replacer) pass(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}

		if i+1 < len(s) && s[i+1] == '$' {
			b.WriteString("$$")
			i += 2
			continue
		}

		if i+1 < len(s) && s[i+1] == '(' {
			if end := strings.IndexByte(s[i+2:], ')'); end > 0 {
				b.WriteString(r.vars[s[i+2:i+2+end]])
				i += end + 3
				continue
			}
		}

		b.WriteByte('$')
		i++
	}
	return b.String()
}
