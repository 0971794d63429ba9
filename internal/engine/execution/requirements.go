package execution

import (
	"fmt"
	"strings"

	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/ui/style"
)

// RequirementSink collects unmet preconditions grouped by the feature that declared them.
type RequirementSink struct {
	groups   []string
	failures map[string][]string
}

// NewRequirementSink creates an empty sink.
func NewRequirementSink() *RequirementSink {
	return &RequirementSink{failures: make(map[string][]string)}
}

// Fail records an unmet requirement for group.
func (s *RequirementSink) Fail(group, format string, args ...any) {
	if _, ok := s.failures[group]; !ok {
		s.groups = append(s.groups, group)
	}
	s.failures[group] = append(s.failures[group], fmt.Sprintf(format, args...))
}

// Failed reports whether any requirement failed.
func (s *RequirementSink) Failed() bool {
	return len(s.groups) > 0
}

// Report renders every failure, grouped in the order groups were first seen.
func (s *RequirementSink) Report() string {
	if !s.Failed() {
		return ""
	}

	var b strings.Builder
	b.WriteString("the following requirements were not met:")
	for _, g := range s.groups {
		b.WriteString("\n" + style.Indent + "in " + g + ":")
		for _, msg := range s.failures[g] {
			b.WriteString("\n" + style.Indent + style.Indent + msg)
		}
	}
	return b.String()
}

// Finish logs the report and reports whether any requirement failed.
func (s *RequirementSink) Finish(log ports.Logger) bool {
	if !s.Failed() {
		return false
	}
	log.Warn(s.Report())
	return true
}
