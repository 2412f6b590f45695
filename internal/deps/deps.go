// Package deps discovers dependency manifests at the repository root and
// surfaces the package names they declare. Parsing is deliberately loose:
// no version resolution, no marker syntax, just names.
package deps

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

type manifest struct {
	name  string
	parse func(data []byte) []string
}

// manifests lists the root-level files understood, in scan order.
var manifests = []manifest{
	{"requirements.txt", parseRequirements},
	{"pyproject.toml", parsePyproject},
	{"package.json", parsePackageJSON},
	{"go.mod", parseGoMod},
}

// Scan reads known manifests directly under root and returns manifest name
// to sorted package names. Missing, unreadable, unparseable, or empty
// manifests are omitted.
func Scan(root string) map[string][]string {
	found := make(map[string][]string)
	for _, m := range manifests {
		data, err := os.ReadFile(filepath.Join(root, m.name))
		if err != nil {
			continue
		}
		names := m.parse(data)
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		found[m.name] = names
	}
	return found
}

func parseRequirements(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// requirementName cuts a PEP 508 requirement down to its bare name.
func requirementName(line string) string {
	for i, r := range line {
		switch r {
		case '=', '<', '>', '~', '!', '[', ';', '@', ' ', '\t':
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

func parsePyproject(data []byte) []string {
	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var names []string
	for _, req := range doc.Project.Dependencies {
		if name := requirementName(strings.TrimSpace(req)); name != "" {
			names = append(names, name)
		}
	}
	for name := range doc.Tool.Poetry.Dependencies {
		// poetry declares the interpreter alongside real packages
		if name == "python" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func parsePackageJSON(data []byte) []string {
	var doc struct {
		Dependencies    map[string]any `json:"dependencies"`
		DevDependencies map[string]any `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var names []string
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	for name := range doc.DevDependencies {
		names = append(names, name)
	}
	return names
}

func parseGoMod(data []byte) []string {
	file, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil
	}
	var names []string
	for _, req := range file.Require {
		if req.Indirect {
			continue
		}
		names = append(names, req.Mod.Path)
	}
	return names
}
