// Package count produces logical line counts and marker totals from a text
// stream. Files are consumed in fixed-size chunks so memory use stays
// independent of file size.
package count

import (
	"bytes"
	"io"
)

// DefaultMarkers are the debt markers scanned for when the caller does not
// supply its own set. Matching is case-sensitive substring matching.
var DefaultMarkers = []string{"TODO", "FIXME"}

const chunkSize = 64 * 1024

// Stats is the result of scanning one stream.
type Stats struct {
	// Lines is the number of logical lines. A final line without a
	// terminating newline still counts.
	Lines int

	// Markers holds the occurrence count per marker token. Every requested
	// marker is present, zero included.
	Markers map[string]int

	// Binary is set when the stream turns out not to be text after all
	// (a NUL byte past the classifier's sample window). Lines and Markers
	// are meaningless when set.
	Binary bool
}

// Scan streams r and returns line and marker statistics. Marker occurrences
// are counted non-overlapping, across chunk boundaries included. The only
// error returned is a read failure; content never errors.
func Scan(r io.Reader, markers []string) (Stats, error) {
	stats := Stats{Markers: make(map[string]int, len(markers))}
	overlap := 0
	for _, m := range markers {
		stats.Markers[m] = 0
		if len(m)-1 > overlap {
			overlap = len(m) - 1
		}
	}

	buf := make([]byte, chunkSize)
	window := make([]byte, 0, chunkSize+overlap)
	carry := make([]byte, 0, overlap)
	sawAny := false
	lastByte := byte('\n')

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if bytes.IndexByte(chunk, 0x00) >= 0 {
				return Stats{Binary: true}, nil
			}

			sawAny = true
			lastByte = chunk[n-1]
			stats.Lines += bytes.Count(chunk, []byte{'\n'})

			if overlap > 0 {
				window = window[:0]
				window = append(window, carry...)
				window = append(window, chunk...)
				for _, m := range markers {
					stats.Markers[m] += countPast(window, []byte(m), len(carry))
				}
				tail := len(window) - overlap
				if tail < 0 {
					tail = 0
				}
				carry = append(carry[:0], window[tail:]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
	}

	if sawAny && lastByte != '\n' {
		stats.Lines++
	}
	return stats, nil
}

// countPast counts non-overlapping occurrences of sub in window that end
// beyond the first carried bytes. Occurrences ending inside the carry were
// already counted when their chunk was scanned.
func countPast(window, sub []byte, carried int) int {
	n := 0
	from := 0
	for {
		i := bytes.Index(window[from:], sub)
		if i < 0 {
			return n
		}
		at := from + i
		if at+len(sub) > carried {
			n++
		}
		from = at + len(sub)
	}
}
