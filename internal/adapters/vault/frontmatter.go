package vault

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// stringList accepts either a YAML scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		*l = splitScalar(node.Value)
		return nil
	case yaml.SequenceNode:
		var out []string
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
				continue
			}
			if v := strings.TrimSpace(item.Value); v != "" {
				out = append(out, v)
			}
		}
		*l = out
		return nil
	}
	return nil
}

// splitScalar handles "aliases: a, b" as well as a single value.
func splitScalar(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type frontmatter struct {
	Aliases stringList `yaml:"aliases"`
	Alias   stringList `yaml:"alias"`
}

// parseAliases reads aliases from a leading "---" delimited YAML block.
// Missing, unterminated or malformed frontmatter yields nil.
func parseAliases(lines []string) []string {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, a := range append([]string(fm.Aliases), fm.Alias...) {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
