// Package walk enumerates a repository tree in deterministic order. Entries
// come out in depth-first pre-order with lexicographic siblings, so repeated
// runs over an unchanged tree see the identical sequence.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/codetag/codetag/internal/ignore"
)

// Entry describes one admitted path, relative to the walk root.
type Entry struct {
	// Rel is the slash-separated path relative to the root.
	Rel string

	// Dir marks directory entries. A directory entry always precedes its
	// children; a directory that cannot be opened still gets its entry.
	Dir bool

	// Size is the byte size for file entries, zero for directories.
	Size int64
}

// Options control traversal policy.
type Options struct {
	// IncludeHidden admits dot-prefixed files and directories.
	IncludeHidden bool
}

// Run walks root, applying eng and opts, and calls fn for every admitted
// entry. Symlinks are never followed. Unreadable directories are reported in
// the returned warnings rather than aborting. A non-nil error from fn stops
// the walk and is returned as-is; ctx cancellation stops it between entries.
func Run(ctx context.Context, root string, eng *ignore.Engine, opts Options, fn func(Entry) error) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	w := &walker{ctx: ctx, root: root, eng: eng, opts: opts, fn: fn}
	if err := w.walkDir(""); err != nil {
		return w.warnings, err
	}
	return w.warnings, nil
}

type walker struct {
	ctx      context.Context
	root     string
	eng      *ignore.Engine
	opts     Options
	fn       func(Entry) error
	warnings []string
}

// walkDir descends into the already-admitted directory at rel, loading its
// ignore scope before judging any child.
func (w *walker) walkDir(rel string) error {
	w.eng.EnterDir(rel)

	entries, err := os.ReadDir(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		w.warnings = append(w.warnings, fmt.Sprintf("access denied: %s", rel))
		return nil
	}

	for _, de := range entries {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		name := de.Name()
		if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if de.Type()&fs.ModeSymlink != 0 {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if de.IsDir() {
			if w.eng.Match(childRel, true) {
				continue
			}
			if err := w.fn(Entry{Rel: childRel, Dir: true}); err != nil {
				return err
			}
			if err := w.walkDir(childRel); err != nil {
				return err
			}
			continue
		}

		if !de.Type().IsRegular() {
			continue
		}
		if w.eng.Match(childRel, false) {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			w.warnings = append(w.warnings, fmt.Sprintf("access denied: %s", childRel))
			continue
		}
		if err := w.fn(Entry{Rel: childRel, Size: fi.Size()}); err != nil {
			return err
		}
	}
	return nil
}

// Collect runs the walk and gathers all entries into a slice.
func Collect(ctx context.Context, root string, eng *ignore.Engine, opts Options) ([]Entry, []string, error) {
	var entries []Entry
	warnings, err := Run(ctx, root, eng, opts, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}
	return entries, warnings, nil
}
