// Package config loads the optional .codetag.yml file and resolves it
// against command-line flags. The core packages never read flags, files, or
// environment variables themselves; they receive fully-resolved options.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultName is the config file discovered at the target root.
const DefaultName = ".codetag.yml"

// File is the on-disk schema: one top-level key per command, holding the
// same option names as that command's flags.
type File struct {
	Scan    ScanOptions    `yaml:"scan"`
	Pack    PackOptions    `yaml:"pack"`
	Distill DistillOptions `yaml:"distill"`
}

// ScanOptions mirrors the scan command's flags.
type ScanOptions struct {
	IncludeHidden   bool   `yaml:"include-hidden"`
	Output          string `yaml:"output"`
	ExcludeDirs     string `yaml:"exclude-dirs"`
	ExcludePatterns string `yaml:"exclude-patterns"`
	Rules           string `yaml:"rules"`
	Workers         int    `yaml:"workers"`
	MaxFiles        int    `yaml:"max-files"`
}

// PackOptions mirrors the pack command's flags.
type PackOptions struct {
	IncludeHidden     bool   `yaml:"include-hidden"`
	Output            string `yaml:"output"`
	MaxTokens         int    `yaml:"max-tokens"`
	MaxFileSizeKB     int    `yaml:"max-file-size-kb"`
	ExcludeExtensions string `yaml:"exclude-extensions"`
	ExcludePatterns   string `yaml:"exclude-patterns"`
	Format            string `yaml:"format"`
	Tokenizer         string `yaml:"tokenizer"`
}

// DistillOptions mirrors the distill command's flags: everything pack takes
// plus the distillation controls.
type DistillOptions struct {
	PackOptions `yaml:",inline"`
	Level       int  `yaml:"level"`
	Anchors     bool `yaml:"anchors"`
}

// Load reads the config file at explicit, or root/.codetag.yml when explicit
// is empty. A missing or malformed file is never fatal: the zero File is
// returned and the problem is logged at debug level.
func Load(explicit, root string, logger *logrus.Logger) *File {
	path := explicit
	if path == "" {
		path = filepath.Join(root, DefaultName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithField("path", path).WithError(err).Debug("no config file loaded")
		return &File{}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		logger.WithField("path", path).WithError(err).Debug("ignoring malformed config file")
		return &File{}
	}
	logger.WithField("path", path).Debug("loaded config file")
	return &f
}

// Resolve picks between a flag value and a config-file value. A flag the
// user set explicitly always wins; otherwise a non-zero config value
// overrides the flag's default.
func Resolve[T comparable](flag T, flagSet bool, file T) T {
	if flagSet {
		return flag
	}
	var zero T
	if file != zero {
		return file
	}
	return flag
}

// SplitList splits a comma-separated flag or config value into its items,
// dropping surrounding whitespace and empty entries.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
