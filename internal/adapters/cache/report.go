package cache

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.trai.ch/dbbm/internal/core/domain"
)

// FormatReport renders a garbage collection report as log lines.
func FormatReport(r *domain.GCReport, dryRun bool) []string {
	verb := func(done, planned string) string {
		if dryRun {
			return planned
		}
		return done
	}

	var lines []string
	for _, f := range r.OrphanFiles {
		lines = append(lines, fmt.Sprintf("%s orphan file %s", verb("removed", "would remove"), filepath.ToSlash(f)))
	}
	for _, k := range r.DroppedEntries {
		lines = append(lines, fmt.Sprintf("%s entry %s/%s (file missing)", verb("dropped", "would drop"), k.Database, k.Hash))
	}
	for _, k := range r.Evicted {
		lines = append(lines, fmt.Sprintf("%s %s/%s", verb("evicted", "would evict"), k.Database, k.Hash))
	}

	freed := humanize.Bytes(uint64(max(r.FreedBytes, 0)))
	retained := humanize.Bytes(uint64(max(r.RetainedBytes, 0)))
	if dryRun {
		lines = append(lines, fmt.Sprintf("garbage collection would free %s, retaining %s", freed, retained))
	} else {
		lines = append(lines, fmt.Sprintf("garbage collection freed %s, retained %s", freed, retained))
	}
	return lines
}
