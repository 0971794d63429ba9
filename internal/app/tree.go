package app

import (
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/tasks"
)

const (
	deployBegin  = "Begin deploy"
	deployEnd    = "Deploy completed"
	restoreBegin = "Restoring databases..."
	restoreEnd   = "All databases restored!"
)

// buildDeployTree returns the pipeline restoring the plan's backups and applying its releases.
func buildDeployTree(
	plan domain.ActionPlan,
	project *domain.Project,
	env *tasks.Env,
	restorer *execution.Restorer,
) (*execution.Node, error) {
	children := make([]*execution.Node, 0, len(plan.Releases)+1)
	children = append(children, execution.NewAggregator(restoreBegin, restoreEnd,
		execution.NewLeaf(execution.NewRestoreTransform(restorer, plan.Databases))))

	for _, rel := range plan.Releases {
		node, err := buildReleaseNode(rel, project, env)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}

	return execution.NewAggregator(deployBegin, deployEnd, children...), nil
}

func buildReleaseNode(rel domain.Release, project *domain.Project, env *tasks.Env) (*execution.Node, error) {
	features := make([]*execution.Node, 0, len(rel.Features))
	for _, name := range rel.Features {
		feature, ok := project.Features[name]
		if !ok {
			return nil, domain.NewFailure(domain.ErrFeatureNotFound, "cannot find feature %s", name)
		}

		node, err := buildFeatureNode(feature, env)
		if err != nil {
			return nil, err
		}
		features = append(features, node)
	}

	return execution.NewAggregator("Begin release "+rel.Name, "End release "+rel.Name, features...), nil
}

func buildFeatureNode(feature *domain.Feature, env *tasks.Env) (*execution.Node, error) {
	leaves := make([]*execution.Node, 0, len(feature.Recipe))
	for _, cfg := range feature.Recipe {
		task, err := env.Registry.Resolve(cfg.Name)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, execution.NewLeaf(tasks.NewTransform(task, tasks.NewContext(env, feature, cfg))))
	}

	return execution.NewAggregator("Begin feature "+feature.Name, "End feature "+feature.Name, leaves...), nil
}
