package config

import (
	"strings"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// parseRecipe decodes a sequence of {taskName: params} mappings.
// A mapping with several keys contributes one invocation per key, in order.
func parseRecipe(node *yaml.Node) (domain.Recipe, error) {
	node = resolve(node)
	if isEmpty(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, nodeError(node, "recipe must be a list")
	}

	var recipe domain.Recipe
	for _, item := range node.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode {
			return nil, nodeError(item, "recipe entry must be a mapping")
		}

		for i := 0; i+1 < len(item.Content); i += 2 {
			params := map[string]string{}
			if err := flatten(item.Content[i+1], "", params); err != nil {
				return nil, err
			}
			recipe = append(recipe, domain.TaskConfig{Name: item.Content[i].Value, Parameters: params})
		}
	}
	return recipe, nil
}

// parseRequire decodes a mapping of requirement type to a list of arguments.
func parseRequire(node *yaml.Node) ([]domain.Requirement, error) {
	node = resolve(node)
	if isEmpty(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "require must be a mapping")
	}

	reqs := make([]domain.Requirement, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		req := domain.Requirement{Type: node.Content[i].Value}

		args := resolve(node.Content[i+1])
		switch args.Kind {
		case yaml.ScalarNode:
			req.Args = []string{args.Value}
		case yaml.SequenceNode:
			for _, a := range args.Content {
				a = resolve(a)
				if a.Kind != yaml.ScalarNode {
					return nil, nodeError(a, "requirement arguments must be scalars")
				}
				req.Args = append(req.Args, a.Value)
			}
		default:
			return nil, nodeError(args, "requirement arguments must be a list")
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// parseCommands decodes a mapping of action name to recipe.
func parseCommands(node *yaml.Node) (map[string]domain.Recipe, error) {
	node = resolve(node)
	commands := map[string]domain.Recipe{}
	if isEmpty(node) {
		return commands, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "commands must be a mapping")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		action := node.Content[i].Value
		recipe, err := parseRecipe(node.Content[i+1])
		if err != nil {
			return nil, zerr.With(err, "action", action)
		}
		commands[action] = recipe
	}
	return commands, nil
}

// flatten turns nested mappings into dotted keys. Sequences are joined with
// newlines and null values become empty strings.
func flatten(node *yaml.Node, prefix string, out map[string]string) error {
	node = resolve(node)
	switch node.Kind {
	case 0:
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(node.Content[i+1], key, out); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return nodeError(item, "list values must be scalars")
			}
			values = append(values, scalar(item))
		}
		out[prefix] = strings.Join(values, "\n")
	case yaml.ScalarNode:
		if prefix == "" {
			if node.Tag == "!!null" {
				return nil
			}
			return nodeError(node, "task parameters must be a mapping")
		}
		out[prefix] = scalar(node)
	default:
		return nodeError(node, "unsupported value")
	}
	return nil
}

func scalar(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return resolve(node.Content[0])
	}
	return node
}

func isEmpty(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func nodeError(node *yaml.Node, msg string) error {
	err := zerr.Wrap(zerr.New(msg), domain.ErrConfigParseFailed.Error())
	return zerr.With(zerr.With(err, "line", node.Line), "column", node.Column)
}
