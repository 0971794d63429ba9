package execution_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
)

func TestRequirementSink_Report(t *testing.T) {
	tree := execution.NewAggregator("Begin deploy", "Deploy completed",
		execution.NewLeaf(execution.NewRestoreTransform(&execution.Restorer{}, []domain.DatabaseBackupInfo{
			{Name: "Main", BackupFilePath: "/backups/Main_R1.bak"},
		})),
		execution.NewLeaf(&step{name: "F1", missing: []string{"path ./scripts does not exist", "environment variable TOOLS is empty"}}),
		execution.NewLeaf(&step{name: "F2"}),
		execution.NewLeaf(&step{name: "F1", missing: []string{"unknown requirement type registry"}}),
	)

	sink := execution.NewRequirementSink()
	tree.Requirements(sink)

	assert.True(t, sink.Failed())
	g := goldie.New(t)
	g.Assert(t, "requirements_report", []byte(sink.Report()))
}

func TestRequirementSink_Finish(t *testing.T) {
	t.Run("nothing failed", func(t *testing.T) {
		log := &recorder{}
		assert.False(t, execution.NewRequirementSink().Finish(log))
		assert.Empty(t, log.lines)
	})

	t.Run("failures are logged once", func(t *testing.T) {
		log := &recorder{}
		sink := execution.NewRequirementSink()
		sink.Fail("F1", "path %s does not exist", "x")

		assert.True(t, sink.Finish(log))
		assert.Equal(t, []string{"WARN the following requirements were not met:\n  in F1:\n    path x does not exist"}, log.lines)
	})
}
