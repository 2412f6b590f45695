// Package keyfiles surfaces the files most worth a reader's attention: the
// K largest source files and everything matching the important-file rules.
package keyfiles

import (
	"container/heap"
	"path"
	"sort"
	"strings"
)

// nonSourceExtensions are excluded from the largest-files ranking so data
// dumps, media, and archives do not crowd out code.
var nonSourceExtensions = map[string]bool{
	".pt": true, ".pth": true, ".bin": true, ".onnx": true,
	".safetensors": true, ".npz": true, ".npy": true,
	".csv": true, ".json": true, ".parquet": true, ".pkl": true, ".joblib": true,
	".log": true, ".txt": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".ico": true, ".mp4": true, ".mp3": true,
	".zip": true, ".gz": true, ".tar": true, ".pdf": true,
}

// LargestFile is one entry of the largest-files ranking.
type LargestFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	IsLFS     bool   `json:"is_lfs,omitempty"`
}

// Detector accumulates key files over a single traversal. Memory is bounded
// by K plus the number of important matches, never by repository size.
type Detector struct {
	k        int
	rules    compiledRules
	largest  largestHeap
	detected map[string]bool
}

// NewDetector returns a Detector keeping the k largest source files.
func NewDetector(k int, rules Rules) *Detector {
	return &Detector{
		k:        k,
		rules:    compileRules(rules),
		detected: make(map[string]bool),
	}
}

// Observe feeds one file into both heuristics. rel is the slash-separated
// repository-relative path; isLFS marks files whose size comes from a
// Git-LFS pointer.
func (d *Detector) Observe(rel string, size int64, isLFS bool) {
	base := strings.ToLower(path.Base(rel))
	ext := strings.ToLower(path.Ext(rel))

	if d.important(base, ext) {
		d.detected[rel] = true
	}

	if d.k <= 0 || nonSourceExtensions[ext] {
		return
	}
	entry := LargestFile{Path: rel, SizeBytes: size, IsLFS: isLFS}
	if d.largest.Len() < d.k {
		heap.Push(&d.largest, entry)
		return
	}
	if beats(entry, d.largest[0]) {
		d.largest[0] = entry
		heap.Fix(&d.largest, 0)
	}
}

func (d *Detector) important(base, ext string) bool {
	if d.rules.filenames[base] {
		return true
	}
	if ext != "" && d.rules.suffixes[ext] {
		return true
	}
	for _, sub := range d.rules.substrings {
		if strings.Contains(base, sub) {
			return true
		}
	}
	return false
}

// Largest returns the ranking, biggest first; equal sizes order by path.
func (d *Detector) Largest() []LargestFile {
	out := make([]LargestFile, len(d.largest))
	copy(out, d.largest)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SizeBytes != out[j].SizeBytes {
			return out[i].SizeBytes > out[j].SizeBytes
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Important returns every detected important file, sorted by path.
func (d *Detector) Important() []string {
	out := make([]string, 0, len(d.detected))
	for p := range d.detected {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// beats reports whether a should displace b in the ranking.
func beats(a, b LargestFile) bool {
	if a.SizeBytes != b.SizeBytes {
		return a.SizeBytes > b.SizeBytes
	}
	return a.Path < b.Path
}

// largestHeap is a min-heap whose root is the weakest kept entry.
type largestHeap []LargestFile

func (h largestHeap) Len() int { return len(h) }

func (h largestHeap) Less(i, j int) bool { return beats(h[j], h[i]) }

func (h largestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *largestHeap) Push(x any) { *h = append(*h, x.(LargestFile)) }

func (h *largestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
