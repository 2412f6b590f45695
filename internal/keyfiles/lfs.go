package keyfiles

import (
	"regexp"
	"strconv"
)

// Git-LFS pointer files are tiny text stubs; anything bigger cannot be one.
const maxPointerSize = 500

const pointerVersionLine = "version https://git-lfs.github.com/spec/v1"

var pointerSizeRe = regexp.MustCompile(`(?m)^\s*size\s+(\d+)`)

// SniffLFSPointer inspects a file prefix and reports the real object size
// when the content is a Git-LFS pointer. size is the on-disk file size.
func SniffLFSPointer(prefix []byte, size int64) (int64, bool) {
	if size > maxPointerSize || len(prefix) < len(pointerVersionLine) {
		return 0, false
	}
	if string(prefix[:len(pointerVersionLine)]) != pointerVersionLine {
		return 0, false
	}
	m := pointerSizeRe.FindSubmatch(prefix)
	if m == nil {
		return 0, false
	}
	logical, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil {
		return 0, false
	}
	return logical, true
}
