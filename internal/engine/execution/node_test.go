package execution_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports/mocks"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.uber.org/mock/gomock"
)

var databases = []string{"Main", "Audit"}

// pipeline mirrors a deploy of R3 on top of R1: a restore step, then releases R2 and R3.
func pipeline(j *journal) *execution.Node {
	leaf := func(name string) *execution.Node {
		return execution.NewLeaf(&step{name: name, journal: j})
	}
	return execution.NewAggregator("Begin deploy", "Deploy completed",
		execution.NewAggregator("Restoring databases...", "All databases restored!", leaf("restore")),
		execution.NewAggregator("Begin release R2", "End release R2", leaf("r2-a"), leaf("r2-b")),
		execution.NewAggregator("Begin release R3", "End release R3", leaf("r3-a"), leaf("r3-b")),
	)
}

func missingCache(ctrl *gomock.Controller) *mocks.MockCacheManager {
	cache := mocks.NewMockCacheManager(ctrl)
	cache.EXPECT().TryGet(gomock.Any(), gomock.Any(), false).Return("", false).AnyTimes()
	return cache
}

func TestCalculate_NoChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := &execution.Runtime{Databases: databases, Cache: missingCache(ctrl)}
	tree := pipeline(nil)

	res, err := tree.Calculate(t.Context(), rt, domain.EmptyStateHash, nil)
	require.NoError(t, err)

	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")
	assert.False(t, res.Changed)
	assert.Same(t, tree, res.Node)
	assert.Equal(t, hashes[4], res.Hash)
	assert.Equal(t, domain.EmptyStateHash, res.Entry)
	assert.Nil(t, res.Anchor)
}

func TestCalculate_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := &execution.Runtime{Databases: databases, Cache: missingCache(ctrl)}
	tree := pipeline(nil)
	resume := chain("restore", "r2-a")[1]

	first, err := tree.Calculate(t.Context(), rt, domain.EmptyStateHash, &resume)
	require.NoError(t, err)
	second, err := tree.Calculate(t.Context(), rt, domain.EmptyStateHash, &resume)
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.Entry, second.Entry)
	assert.Equal(t, labels(first.Node), labels(second.Node))
	assert.Equal(t, labels(pipeline(nil)), labels(tree), "source tree is not modified")
}

func TestCalculate_ResumeElidesCompletedSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := &execution.Runtime{Databases: databases, Cache: missingCache(ctrl)}
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")
	resume := hashes[3]

	res, err := pipeline(nil).Calculate(t.Context(), rt, domain.EmptyStateHash, &resume)
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Nil(t, res.Anchor)
	assert.Equal(t, resume, res.Entry)
	assert.Equal(t, hashes[4], res.Hash)
	assert.Equal(t, []string{
		"Begin deploy",
		"Begin release R3", "r3-b", "End release R3",
		"Deploy completed",
	}, labels(res.Node))
}

func TestCalculate_ResumeAtLastStepElidesEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := &execution.Runtime{Databases: databases, Cache: missingCache(ctrl)}
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")

	res, err := pipeline(nil).Calculate(t.Context(), rt, domain.EmptyStateHash, &hashes[4])
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Nil(t, res.Node)
	assert.Equal(t, hashes[4], res.Hash)
}

func TestCalculate_CacheSubstitution(t *testing.T) {
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")
	hit := hashes[2]

	t.Run("every database cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCacheManager(ctrl)
		cache.EXPECT().TryGet(gomock.Any(), gomock.Any(), false).DoAndReturn(
			func(db string, h domain.StateHash, _ bool) (string, bool) {
				if h == hit {
					return "/cache/" + db + "/" + h.String(), true
				}
				return "", false
			}).AnyTimes()
		rt := &execution.Runtime{Databases: databases, Cache: cache}

		res, err := pipeline(nil).Calculate(t.Context(), rt, domain.EmptyStateHash, nil)
		require.NoError(t, err)

		assert.True(t, res.Changed)
		require.NotNil(t, res.Anchor)
		assert.Equal(t, hit, *res.Anchor)
		assert.Equal(t, hashes[4], res.Hash)
		assert.Equal(t, []string{
			"Begin deploy",
			"Begin release R2",
			execution.CacheRestoreBegin, "restore from cache", execution.CacheRestoreEnd,
			"End release R2",
			"Begin release R3", "r3-a", "r3-b", "End release R3",
			"Deploy completed",
		}, labels(res.Node))

		restore, ok := res.Node.Leaves()[0].(*execution.RestoreTransform)
		require.True(t, ok)
		assert.Equal(t, []domain.DatabaseBackupInfo{
			{Name: "Audit", BackupFilePath: "/cache/Audit/" + hit.String()},
			{Name: "Main", BackupFilePath: "/cache/Main/" + hit.String()},
		}, restore.Databases())
	})

	t.Run("one database missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCacheManager(ctrl)
		cache.EXPECT().TryGet("Main", gomock.Any(), false).DoAndReturn(
			func(_ string, h domain.StateHash, _ bool) (string, bool) {
				return "/cache/Main", h == hit
			}).AnyTimes()
		cache.EXPECT().TryGet("Audit", gomock.Any(), false).Return("", false).AnyTimes()
		rt := &execution.Runtime{Databases: databases, Cache: cache}

		res, err := pipeline(nil).Calculate(t.Context(), rt, domain.EmptyStateHash, nil)
		require.NoError(t, err)

		assert.False(t, res.Changed)
		assert.Nil(t, res.Anchor)
	})
}

func TestCalculate_LaterChangeReplacesAnchor(t *testing.T) {
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheManager(ctrl)
	cache.EXPECT().TryGet(gomock.Any(), gomock.Any(), false).DoAndReturn(
		func(_ string, h domain.StateHash, _ bool) (string, bool) {
			return "/cache/x", h == hashes[1]
		}).AnyTimes()
	rt := &execution.Runtime{Databases: databases, Cache: cache}

	res, err := pipeline(nil).Calculate(t.Context(), rt, domain.EmptyStateHash, &hashes[3])
	require.NoError(t, err)

	assert.Nil(t, res.Anchor, "the cache hit was pruned by the resume point")
	assert.Equal(t, hashes[3], res.Entry)
}

func TestRun_OrderDepthAndResumeMarker(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")

	resume := mocks.NewMockResumeStore(ctrl)
	gomock.InOrder(
		resume.EXPECT().Save(hashes[0]).Return(nil),
		resume.EXPECT().Save(hashes[1]).Return(nil),
		resume.EXPECT().Save(hashes[2]).Return(nil),
		resume.EXPECT().Save(hashes[3]).Return(nil),
		resume.EXPECT().Save(hashes[4]).Return(nil),
	)

	log := &recorder{}
	j := &journal{}
	rt := &execution.Runtime{Databases: databases, Resume: resume, Logger: log, MinDeployTime: time.Hour}

	final, err := pipeline(j).Run(t.Context(), rt, domain.EmptyStateHash)
	require.NoError(t, err)

	assert.Equal(t, hashes[4], final)
	assert.Equal(t, []string{"restore@2", "r2-a@2", "r2-b@2", "r3-a@2", "r3-b@2"}, j.entries)
	assert.Equal(t, []string{
		"Begin deploy",
		"  Restoring databases...",
		"  All databases restored!",
		"  Begin release R2",
		"  End release R2",
		"  Begin release R3",
		"  End release R3",
		"Deploy completed",
	}, log.lines)
}

func TestRun_CachesSlowIntermediateSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashes := chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")

	resume := mocks.NewMockResumeStore(ctrl)
	resume.EXPECT().Save(gomock.Any()).Return(nil).Times(5)

	cache := mocks.NewMockCacheManager(ctrl)
	for _, h := range hashes[1:4] {
		for _, db := range databases {
			cache.EXPECT().Add(gomock.Any(), db, h)
		}
	}

	// Every clock reading advances a minute, so each step takes one minute.
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}

	rt := &execution.Runtime{
		Databases:     databases,
		Cache:         cache,
		Resume:        resume,
		Logger:        &recorder{},
		MinDeployTime: 30 * time.Second,
		Now:           clock,
	}

	_, err := pipeline(nil).Run(t.Context(), rt, domain.EmptyStateHash)
	require.NoError(t, err)
}

func TestRun_FastStepsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)

	resume := mocks.NewMockResumeStore(ctrl)
	resume.EXPECT().Save(gomock.Any()).Return(nil).Times(5)
	cache := mocks.NewMockCacheManager(ctrl)

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rt := &execution.Runtime{
		Databases:     databases,
		Cache:         cache,
		Resume:        resume,
		Logger:        &recorder{},
		MinDeployTime: time.Second,
		Now:           func() time.Time { return fixed },
	}

	_, err := pipeline(nil).Run(t.Context(), rt, domain.EmptyStateHash)
	require.NoError(t, err)
}

func TestRun_FailureStopsPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	hashes := chain("a", "b")

	resume := mocks.NewMockResumeStore(ctrl)
	resume.EXPECT().Save(hashes[0]).Return(nil)

	boom := domain.NewFailure(domain.ErrScriptExecutionFailed, "one or more errors occurred during scripts execution")
	j := &journal{}
	tree := execution.NewAggregator("Begin release R1", "End release R1",
		execution.NewLeaf(&step{name: "a", journal: j}),
		execution.NewLeaf(&step{name: "b", journal: j, runErr: boom}),
		execution.NewLeaf(&step{name: "c", journal: j}),
	)

	log := &recorder{}
	rt := &execution.Runtime{Resume: resume, Logger: log}

	last, err := tree.Run(t.Context(), rt, domain.EmptyStateHash)

	require.ErrorIs(t, err, domain.ErrScriptExecutionFailed)
	assert.Equal(t, hashes[0], last)
	assert.Equal(t, []string{"a@1", "b@1"}, j.entries)
	assert.Equal(t, []string{"Begin release R1"}, log.lines)
}

func TestRun_ResumeWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	resume := mocks.NewMockResumeStore(ctrl)
	resume.EXPECT().Save(gomock.Any()).Return(errors.New("disk full"))

	rt := &execution.Runtime{Resume: resume, Logger: &recorder{}}
	_, err := execution.NewLeaf(&step{name: "a"}).Run(t.Context(), rt, domain.EmptyStateHash)

	assert.ErrorContains(t, err, domain.ErrResumeWriteFailed.Error())
}

func TestRun_DryRunHasNoSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := &execution.Runtime{
		Databases: databases,
		Cache:     mocks.NewMockCacheManager(ctrl),
		Resume:    mocks.NewMockResumeStore(ctrl),
		Logger:    &recorder{},
		DryRun:    true,
	}

	final, err := pipeline(nil).Run(t.Context(), rt, domain.EmptyStateHash)
	require.NoError(t, err)
	assert.Equal(t, chain("restore", "r2-a", "r2-b", "r3-a", "r3-b")[4], final)
}

func TestRun_SpansPerLeaf(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)

	hash := chain("a")[0]
	tracer.EXPECT().Start(gomock.Any(), "a", gomock.Any()).Return(t.Context(), span)
	span.EXPECT().SetAttribute("dbbm.hash", hash.String())
	span.EXPECT().SetAttribute("dbbm.cached", false)
	span.EXPECT().End()

	resume := mocks.NewMockResumeStore(ctrl)
	resume.EXPECT().Save(hash).Return(nil)

	rt := &execution.Runtime{Resume: resume, Tracer: tracer, Logger: &recorder{}}
	_, err := execution.NewLeaf(&step{name: "a"}).Run(t.Context(), rt, domain.EmptyStateHash)
	require.NoError(t, err)
}

func TestRun_InvalidNode(t *testing.T) {
	var n *execution.Node
	_, err := n.Run(t.Context(), &execution.Runtime{}, domain.EmptyStateHash)
	require.ErrorIs(t, err, domain.ErrInvalidNode)

	_, err = n.Calculate(t.Context(), &execution.Runtime{}, domain.EmptyStateHash, nil)
	require.ErrorIs(t, err, domain.ErrInvalidNode)
}
