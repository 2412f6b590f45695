// Package analyze orchestrates a full repository scan: walk, classify,
// count, detect, and assemble the report. Per-file work fans out over a
// bounded worker pool; results are collected in walk order so the report is
// deterministic regardless of scheduling.
package analyze

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codetag/codetag/internal/classify"
	"github.com/codetag/codetag/internal/count"
	"github.com/codetag/codetag/internal/deps"
	"github.com/codetag/codetag/internal/ignore"
	"github.com/codetag/codetag/internal/keyfiles"
	"github.com/codetag/codetag/internal/parser"
	"github.com/codetag/codetag/internal/report"
	"github.com/codetag/codetag/internal/secrets"
	"github.com/codetag/codetag/internal/walk"
)

const (
	topLargestFiles     = 10
	topComplexFunctions = 5
)

// Options control a scan run.
type Options struct {
	// IncludeHidden admits dot-prefixed entries.
	IncludeHidden bool

	// ExcludeDirs and ExcludePatterns are user exclusions layered over the
	// built-in and per-directory ignore rules.
	ExcludeDirs     []string
	ExcludePatterns []string

	// RulesPath points at an optional key-file rules YAML merged over the
	// built-in rules.
	RulesPath string

	// Workers bounds the per-file worker pool. Zero means GOMAXPROCS.
	Workers int

	// MaxFiles aborts the scan when the tree holds more files. Zero means
	// no limit.
	MaxFiles int

	// Clock supplies the current time; nil means time.Now. Tests pin it to
	// get byte-identical reports.
	Clock func() time.Time
}

// Scan walks root, runs the per-file analyzers, and assembles the report.
// The returned error is fatal (bad root, cancellation, file limit); every
// recoverable condition becomes a report warning instead.
func Scan(ctx context.Context, root string, opts Options, logger *logrus.Logger) (*report.Report, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	start := clock()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access path: %w", err)
	}

	eng := ignore.New(absRoot, ignore.Options{
		ExcludeDirs:     opts.ExcludeDirs,
		ExcludePatterns: opts.ExcludePatterns,
	})
	entries, walkWarnings, err := walk.Collect(ctx, absRoot, eng, walk.Options{IncludeHidden: opts.IncludeHidden})
	if err != nil {
		return nil, err
	}

	var files []walk.Entry
	for _, e := range entries {
		if !e.Dir {
			files = append(files, e)
		}
	}
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		return nil, fmt.Errorf("repository has %d files, exceeding limit of %d", len(files), opts.MaxFiles)
	}

	warnings := append([]string{}, eng.Warnings()...)
	warnings = append(warnings, walkWarnings...)

	disabled, disableWarnings := parseDisabledAnalyzers(os.Getenv(EnvDisabledAnalyzers))
	warnings = append(warnings, disableWarnings...)

	rules, err := keyfiles.LoadRules(opts.RulesPath)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid rules file: %s", opts.RulesPath))
		logger.WithError(err).Warn("Falling back to built-in key-file rules")
	}
	detector := keyfiles.NewDetector(topLargestFiles, rules)

	logger.WithFields(logrus.Fields{
		"path":  absRoot,
		"files": len(files),
	}).Debug("Starting analysis")

	s := &scanner{
		root:       absRoot,
		markers:    count.DefaultMarkers,
		complexity: !disabled["complexity"],
		secrets:    !disabled["secrets"],
	}
	if disabled["markers"] {
		s.markers = nil
	}
	results := s.analyzeAll(ctx, files, opts.Workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := report.NewTreeBuilder(filepath.Base(absRoot))
	for _, e := range entries {
		tree.Add(e.Rel, e.Dir, e.Size)
	}

	var (
		totalFiles    int
		todoCount     int
		fixmeCount    int
		totalFuncs    int
		complexitySum float64
		langLoc       = map[string]int{}
		allComplex    []report.ComplexFunction
		secretsFound  []report.FoundSecret
	)
	for i, res := range results {
		e := files[i]
		if res.warning != "" {
			warnings = append(warnings, res.warning)
		}
		size := e.Size
		if res.isLFS {
			size = res.lfsSize
		}
		detector.Observe(e.Rel, size, res.isLFS)
		if res.binary {
			continue
		}
		totalFiles++
		if res.language != classify.Unknown {
			langLoc[res.language] += res.lines
		}
		todoCount += res.todo
		fixmeCount += res.fixme
		for _, fn := range res.functions {
			allComplex = append(allComplex, report.ComplexFunction{
				FilePath:        e.Rel,
				FunctionName:    fn.Name,
				LineNumber:      fn.Line,
				ComplexityScore: fn.Complexity,
			})
			complexitySum += float64(fn.Complexity)
		}
		totalFuncs += len(res.functions)
		secretsFound = append(secretsFound, res.secrets...)
	}

	sort.Slice(allComplex, func(i, j int) bool {
		a, b := allComplex[i], allComplex[j]
		if a.ComplexityScore != b.ComplexityScore {
			return a.ComplexityScore > b.ComplexityScore
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})
	if len(allComplex) > topComplexFunctions {
		allComplex = allComplex[:topComplexFunctions]
	}

	depsFound := map[string][]string{}
	if !disabled["dependencies"] {
		depsFound = deps.Scan(absRoot)
	}

	totalLines := 0
	for _, n := range langLoc {
		totalLines += n
	}
	avg := 0.0
	if totalFuncs > 0 {
		avg = report.Round2(complexitySum / float64(totalFuncs))
	}
	sort.Strings(warnings)

	duration := clock().Sub(start)
	logger.WithFields(logrus.Fields{
		"files":    totalFiles,
		"duration": duration,
	}).Debug("Analysis complete")

	return &report.Report{
		AnalysisMetadata: report.NewMetadata(start, duration),
		RepositorySummary: report.Summary{
			TotalFiles:                  totalFiles,
			TotalLinesOfCode:            totalLines,
			PrimaryLanguage:             report.PrimaryLanguage(langLoc),
			LanguageStats:               langLoc,
			TotalFunctionsFound:         totalFuncs,
			AverageCyclomaticComplexity: avg,
		},
		DirectoryTree: []*report.TreeNode{tree.Root()},
		KeyFiles: report.KeyFiles{
			LargestFiles:           detector.Largest(),
			ImportantFilesDetected: detector.Important(),
		},
		CodeInsights: report.CodeInsights{
			TodoCount:           todoCount,
			FixmeCount:          fixmeCount,
			TopComplexFunctions: allComplex,
		},
		DependencyInfo:   report.DependencyInfo{DependencyFilesFound: depsFound},
		ThreatAssessment: report.ThreatAssessment{SecretsFound: secretsFound},
		Warnings:         warnings,
	}, nil
}

type scanner struct {
	root       string
	markers    []string
	complexity bool
	secrets    bool
}

type fileResult struct {
	language  string
	binary    bool
	lines     int
	todo      int
	fixme     int
	isLFS     bool
	lfsSize   int64
	functions []parser.Function
	secrets   []report.FoundSecret
	warning   string
}

// analyzeAll fans the files out over a worker pool and returns results in
// input order. A single file or worker degrades to a plain loop.
func (s *scanner) analyzeAll(ctx context.Context, files []walk.Entry, workers int) []fileResult {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(files))

	if workers == 1 {
		for i, e := range files {
			if ctx.Err() != nil {
				break
			}
			results[i] = s.analyzeFile(ctx, e)
		}
		return results
	}

	type job struct {
		index int
		entry walk.Entry
	}
	jobs := make(chan job, len(files))
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[j.index] = s.analyzeFile(ctx, j.entry)
			}
		})
	}
	for i, e := range files {
		jobs <- job{index: i, entry: e}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (s *scanner) analyzeFile(ctx context.Context, e walk.Entry) fileResult {
	res := fileResult{language: classify.Unknown}

	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(e.Rel)))
	if err != nil {
		res.warning = "access denied: " + e.Rel
		return res
	}

	prefix := content
	if len(prefix) > classify.SampleSize {
		prefix = prefix[:classify.SampleSize]
	}
	cls := classify.Detect(e.Rel, prefix)
	res.language, res.binary = cls.Language, cls.Binary
	if logical, ok := keyfiles.SniffLFSPointer(prefix, e.Size); ok {
		res.isLFS, res.lfsSize = true, logical
	}
	if res.binary {
		return res
	}

	stats, err := count.Scan(bytes.NewReader(content), s.markers)
	if err != nil {
		res.warning = "access denied: " + e.Rel
		return res
	}
	if stats.Binary {
		// NUL beyond the classification sample
		res.binary = true
		res.warning = "not text: " + e.Rel
		return res
	}
	res.lines = stats.Lines
	res.todo = stats.Markers["TODO"]
	res.fixme = stats.Markers["FIXME"]

	if s.secrets && secrets.Eligible(e.Rel, e.Size) {
		res.secrets = secrets.Scan(e.Rel, content)
	}

	if s.complexity && res.language != classify.Unknown {
		if spec, ok := parser.Lookup(res.language); ok {
			if functions, err := spec.Functions(ctx, e.Rel, content); err == nil {
				res.functions = functions
			}
		}
	}
	return res
}
