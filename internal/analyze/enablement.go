package analyze

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// EnvDisabledAnalyzers names the optional analyzers to skip, comma separated.
const EnvDisabledAnalyzers = "CODETAG_DISABLED_ANALYZERS"

// analyzerNames are the analyzers that can be switched off. The walker,
// classifier, and line counter always run.
var analyzerNames = []string{"markers", "secrets", "dependencies", "complexity"}

// parseDisabledAnalyzers resolves the env value into a disable set. Unknown
// names produce a warning, with a close-match suggestion when one exists.
func parseDisabledAnalyzers(value string) (map[string]bool, []string) {
	disabled := make(map[string]bool)
	var warnings []string
	for _, raw := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if known(name) {
			disabled[name] = true
			continue
		}
		if matches := fuzzy.Find(name, analyzerNames); len(matches) > 0 {
			warnings = append(warnings, fmt.Sprintf("unknown analyzer %q (did you mean %q?)", name, matches[0].Str))
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown analyzer %q", name))
		}
	}
	return disabled, warnings
}

func known(name string) bool {
	for _, n := range analyzerNames {
		if n == name {
			return true
		}
	}
	return false
}
