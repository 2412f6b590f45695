package keyfiles

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules drive important-file detection. All matching is case-insensitive:
// exact base names, extensions (leading dot included), and substrings of the
// base name.
type Rules struct {
	Filenames  []string `yaml:"important_filenames"`
	Suffixes   []string `yaml:"important_suffixes"`
	Substrings []string `yaml:"important_substrings"`
}

// DefaultRules returns the built-in detection rules: READMEs, licences,
// container and build manifests, dependency manifests, and common
// entry-point filenames.
func DefaultRules() Rules {
	return Rules{
		Filenames: []string{
			"readme.md", "readme.rst", "readme.txt", "readme",
			"license", "license.md", "license.txt", "licence", "licence.md",
			"dockerfile", "docker-compose.yml", "docker-compose.yaml",
			"makefile", "cmakelists.txt", "justfile",
			"package.json", "pyproject.toml", "setup.py", "setup.cfg",
			"requirements.txt", "pipfile", "go.mod", "cargo.toml",
			"gemfile", "pom.xml", "build.gradle", "build.gradle.kts",
			"tsconfig.json",
			"main.py", "main.go", "app.py", "manage.py", "index.js", "index.ts",
			"__main__.py",
		},
		Suffixes: []string{
			".proto", ".graphql", ".tf",
		},
		Substrings: []string{
			"docker-compose", "dockerfile", "requirements",
		},
	}
}

// LoadRules merges the rules file at path onto the defaults; custom entries
// extend the built-in lists. An empty path returns the defaults unchanged.
// On a read or parse failure the defaults are returned alongside the error
// so callers can degrade to a warning.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	var custom Rules
	if err := yaml.Unmarshal(content, &custom); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules.Filenames = append(rules.Filenames, custom.Filenames...)
	rules.Suffixes = append(rules.Suffixes, custom.Suffixes...)
	rules.Substrings = append(rules.Substrings, custom.Substrings...)
	return rules, nil
}

// compiledRules holds lowered lookup structures for one detector.
type compiledRules struct {
	filenames  map[string]bool
	suffixes   map[string]bool
	substrings []string
}

func compileRules(rules Rules) compiledRules {
	c := compiledRules{
		filenames: make(map[string]bool, len(rules.Filenames)),
		suffixes:  make(map[string]bool, len(rules.Suffixes)),
	}
	for _, n := range rules.Filenames {
		c.filenames[strings.ToLower(n)] = true
	}
	for _, s := range rules.Suffixes {
		c.suffixes[strings.ToLower(s)] = true
	}
	for _, s := range rules.Substrings {
		c.substrings = append(c.substrings, strings.ToLower(s))
	}
	return c
}
