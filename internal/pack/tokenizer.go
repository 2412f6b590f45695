package pack

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used for exact counting.
const encodingName = "o200k_base"

// Tokenizer prices a unit of output against the pack budget.
type Tokenizer interface {
	Count(text string) int
}

// estimator is the default cost function: a fixed four-bytes-per-token
// divisor, rounded up. It needs no external data and is fully offline.
type estimator struct{}

func (estimator) Count(text string) int {
	return (len(text) + 3) / 4
}

type exactTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *exactTokenizer) Count(text string) int {
	return len(t.enc.EncodeOrdinary(text))
}

// newTokenizer returns the exact BPE tokenizer when requested and available.
// Initialisation can fail offline (the encoding data may need fetching); that
// is a capability gap, so the estimator takes over with a warning.
func newTokenizer(exact bool) (Tokenizer, string) {
	if !exact {
		return estimator{}, ""
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return estimator{}, "exact tokenizer unavailable, using estimate: " + err.Error()
	}
	return &exactTokenizer{enc: enc}, ""
}
