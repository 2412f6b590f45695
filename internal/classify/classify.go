// Package classify maps files to language labels and separates text from
// binary content. Detection is static first (filename, then extension) with a
// shebang fallback for extensionless executables; it returns Unknown rather
// than erroring so callers never have to branch on failure.
package classify

import (
	"bytes"
	"path/filepath"
	"strings"
)

// SampleSize is the maximum number of leading bytes callers need to provide
// for content sniffing. Reading more does not change the result.
const SampleSize = 8000

// binaryRatioThreshold marks a sample binary when more than this fraction of
// its bytes are neither printable nor common whitespace/control characters.
const binaryRatioThreshold = 0.30

// Result is the classification of a single file.
type Result struct {
	Language string
	Binary   bool
}

// Detect classifies a file from its path and a capped prefix of its content.
// The prefix may be nil or empty, in which case only path rules apply and the
// file is assumed to be text.
func Detect(path string, prefix []byte) Result {
	if IsBinary(prefix) {
		return Result{Language: languageByPath(path), Binary: true}
	}

	lang := languageByPath(path)
	if lang == Unknown && filepath.Ext(path) == "" {
		if sniffed := sniffShebang(prefix); sniffed != "" {
			lang = sniffed
		}
	}
	return Result{Language: lang}
}

// DetectLanguage returns the language for a path using filename and
// extension rules only, and whether any rule matched.
func DetectLanguage(path string) (string, bool) {
	lang := languageByPath(path)
	return lang, lang != Unknown
}

func languageByPath(path string) string {
	name := strings.ToLower(filepath.Base(path))
	if lang, ok := filenameTable[name]; ok {
		return lang
	}
	if lang, ok := extLookup[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return Unknown
}

// IsBinary reports whether a content sample looks like binary data. A NUL
// byte anywhere in the sample is decisive; otherwise a high ratio of
// non-text bytes tips the verdict.
func IsBinary(sample []byte) bool {
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}
	if len(sample) == 0 {
		return false
	}
	if bytes.IndexByte(sample, 0x00) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 0x07 || (b > 0x0d && b < 0x20) || b == 0x7f {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > binaryRatioThreshold
}

// sniffShebang extracts a language from a "#!" interpreter line. It handles
// the common "#!/usr/bin/env <interpreter>" indirection and ignores version
// suffixes such as python3.12.
func sniffShebang(prefix []byte) string {
	if !bytes.HasPrefix(prefix, []byte("#!")) {
		return ""
	}
	line := prefix[2:]
	if idx := bytes.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(strings.TrimSpace(string(line)))
	if len(fields) == 0 {
		return ""
	}

	interp := filepath.Base(fields[0])
	if interp == "env" {
		if len(fields) < 2 {
			return ""
		}
		interp = filepath.Base(fields[1])
	}

	if lang, ok := shebangTable[interp]; ok {
		return lang
	}
	// Tolerate versioned interpreters (python3.12, ruby3.3).
	trimmed := strings.TrimRight(interp, "0123456789.")
	if lang, ok := shebangTable[trimmed]; ok {
		return lang
	}
	return ""
}
