// Package report defines the analysis report schema and its assembly
// helpers. A report is a single immutable value; serialisation is stable so
// identical analyses produce byte-identical documents.
package report

import (
	"encoding/json"
	"math"
	"time"

	"github.com/codetag/codetag/internal/classify"
	"github.com/codetag/codetag/internal/keyfiles"
)

// Version identifies the report schema.
const Version = "1.1"

// TimestampFormat is the UTC layout stamped into analysis metadata.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Metadata describes the analysis run itself.
type Metadata struct {
	ReportVersion           string  `json:"report_version"`
	Timestamp               string  `json:"timestamp"`
	AnalysisDurationSeconds float64 `json:"analysis_duration_seconds"`
}

// NewMetadata stamps metadata from a start time and duration.
func NewMetadata(start time.Time, duration time.Duration) Metadata {
	return Metadata{
		ReportVersion:           Version,
		Timestamp:               start.UTC().Format(TimestampFormat),
		AnalysisDurationSeconds: Round2(duration.Seconds()),
	}
}

// Summary aggregates repository-wide counts.
type Summary struct {
	TotalFiles                  int            `json:"total_files"`
	TotalLinesOfCode            int            `json:"total_lines_of_code"`
	PrimaryLanguage             *string        `json:"primary_language"`
	LanguageStats               map[string]int `json:"language_stats"`
	TotalFunctionsFound         int            `json:"total_functions_found"`
	AverageCyclomaticComplexity float64        `json:"average_cyclomatic_complexity"`
}

// KeyFiles carries both key-file heuristics.
type KeyFiles struct {
	LargestFiles           []keyfiles.LargestFile `json:"largest_files"`
	ImportantFilesDetected []string               `json:"important_files_detected"`
}

// ComplexFunction is one entry of the complexity ranking.
type ComplexFunction struct {
	FilePath        string `json:"file_path"`
	FunctionName    string `json:"function_name"`
	LineNumber      int    `json:"line_number"`
	ComplexityScore int    `json:"complexity_score"`
}

// CodeInsights carries marker counts and the complexity ranking.
type CodeInsights struct {
	TodoCount           int               `json:"todo_count"`
	FixmeCount          int               `json:"fixme_count"`
	TopComplexFunctions []ComplexFunction `json:"top_complex_functions"`
}

// DependencyInfo maps ecosystem names to the manifest files found.
type DependencyInfo struct {
	DependencyFilesFound map[string][]string `json:"dependency_files_found"`
}

// FoundSecret is one potential credential leak.
type FoundSecret struct {
	FilePath    string `json:"file_path"`
	SecretType  string `json:"secret_type"`
	LineNumber  int    `json:"line_number"`
	LineContent string `json:"line_content"`
}

// ThreatAssessment carries the secret-scan findings.
type ThreatAssessment struct {
	SecretsFound []FoundSecret `json:"secrets_found"`
}

// Report is the complete analysis result.
type Report struct {
	AnalysisMetadata  Metadata         `json:"analysis_metadata"`
	RepositorySummary Summary          `json:"repository_summary"`
	DirectoryTree     []*TreeNode      `json:"directory_tree"`
	KeyFiles          KeyFiles         `json:"key_files"`
	CodeInsights      CodeInsights     `json:"code_insights"`
	DependencyInfo    DependencyInfo   `json:"dependency_info"`
	ThreatAssessment  ThreatAssessment `json:"threat_assessment"`
	Warnings          []string         `json:"warnings,omitempty"`
}

// Marshal renders the report as indented JSON. Nil collections are
// normalised to empty ones first so absent data serialises as [] or {}
// rather than null.
func (r *Report) Marshal() ([]byte, error) {
	r.normalise()
	return json.MarshalIndent(r, "", "  ")
}

func (r *Report) normalise() {
	if r.RepositorySummary.LanguageStats == nil {
		r.RepositorySummary.LanguageStats = map[string]int{}
	}
	if r.DirectoryTree == nil {
		r.DirectoryTree = []*TreeNode{}
	}
	if r.KeyFiles.LargestFiles == nil {
		r.KeyFiles.LargestFiles = []keyfiles.LargestFile{}
	}
	if r.KeyFiles.ImportantFilesDetected == nil {
		r.KeyFiles.ImportantFilesDetected = []string{}
	}
	if r.CodeInsights.TopComplexFunctions == nil {
		r.CodeInsights.TopComplexFunctions = []ComplexFunction{}
	}
	if r.DependencyInfo.DependencyFilesFound == nil {
		r.DependencyInfo.DependencyFilesFound = map[string][]string{}
	}
	if r.ThreatAssessment.SecretsFound == nil {
		r.ThreatAssessment.SecretsFound = []FoundSecret{}
	}
}

// PrimaryLanguage picks the language with the most lines. Ties resolve to
// the language declared earlier in the classification table, so results
// never depend on map order. Returns nil for empty stats.
func PrimaryLanguage(stats map[string]int) *string {
	best := ""
	bestLines := -1
	for language, lines := range stats {
		if lines > bestLines {
			best, bestLines = language, lines
			continue
		}
		if lines == bestLines && classify.LanguageRank(language) < classify.LanguageRank(best) {
			best = language
		}
	}
	if bestLines < 0 {
		return nil
	}
	return &best
}

// Round2 rounds to two decimal places, matching the report's precision for
// averages and durations.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
