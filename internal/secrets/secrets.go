// Package secrets detects hard-coded credentials with per-line regex
// patterns and filename heuristics. Findings are advisory; nothing here
// reads the filesystem, callers pass content they already hold.
package secrets

import (
	"path"
	"regexp"
	"strings"

	"github.com/codetag/codetag/internal/report"
)

// MaxFileSize bounds the files worth scanning. Anything larger is skipped
// wholesale, filename heuristics included.
const MaxFileSize = 1 << 20

// maxLineContent caps the stored line excerpt.
const maxLineContent = 200

// skipExtensions lists binary and generated formats never scanned.
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true,
	".mp3": true, ".wav": true, ".flac": true, ".mp4": true, ".mov": true,
	".avi": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".exe": true, ".dll": true, ".so": true, ".o": true, ".a": true,
	".lib": true,
	".lock": true, ".bin": true, ".dat": true,
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns are checked in order; the first match on a line wins.
var patterns = []pattern{
	{"AWS Access Key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"GitHub Token", regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`)},
	{"Generic API Key", regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret[_-]?key|access[_-]?token)\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`)},
	{"Private Key", regexp.MustCompile(`-----BEGIN (?:[A-Z]+ )?PRIVATE KEY-----`)},
}

// suspiciousNames flag files that commonly hold credentials. Matched as
// substrings of the lowercased base name so variants (.env.local,
// credentials.json) trigger too.
var suspiciousNames = []string{".env", "credentials", ".secret", "private.key"}

// Eligible reports whether a file should be scanned at all.
func Eligible(rel string, size int64) bool {
	if size > MaxFileSize {
		return false
	}
	return !skipExtensions[strings.ToLower(path.Ext(rel))]
}

// Scan inspects one file's content and returns findings in a fixed order:
// the filename heuristic first, then line matches ascending. Callers are
// expected to gate on Eligible.
func Scan(rel string, content []byte) []report.FoundSecret {
	var findings []report.FoundSecret

	base := path.Base(rel)
	lowered := strings.ToLower(base)
	for _, name := range suspiciousNames {
		if strings.Contains(lowered, name) {
			findings = append(findings, finding(rel, "Suspicious Filename", 1, base))
			break
		}
	}

	for lineno, line := range strings.Split(string(content), "\n") {
		for _, p := range patterns {
			if p.re.MatchString(line) {
				findings = append(findings, finding(rel, p.name, lineno+1, line))
				break
			}
		}
	}
	return findings
}

func finding(rel, secretType string, line int, content string) report.FoundSecret {
	content = strings.TrimSpace(content)
	if runes := []rune(content); len(runes) > maxLineContent {
		content = string(runes[:maxLineContent])
	}
	return report.FoundSecret{
		FilePath:    rel,
		SecretType:  secretType,
		LineNumber:  line,
		LineContent: content,
	}
}
