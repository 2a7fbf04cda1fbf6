package app

import (
	"bufio"
	"unicode"
	"unicode/utf8"
)

// Stands in for a token that did not fit in the scan buffer. Real tokens never contain
// whitespace, so this can't collide with input.
const oversizedToken = " oversized token "

// tokenSplitter splits on whitespace like bufio.ScanWords. A run of non-space bytes that fills
// the scan buffer is skipped and reported once as oversizedToken instead of failing the scan.
type tokenSplitter struct {
	maxTokenSize int
	discarding   bool
}

func newTokenSplitter(maxTokenSize int) *tokenSplitter {
	return &tokenSplitter{maxTokenSize: maxTokenSize}
}

func (s *tokenSplitter) Split(data []byte, atEOF bool) (int, []byte, error) {
	if s.discarding {
		end := indexSpace(data)
		if end < 0 {
			if atEOF {
				s.discarding = false
			}
			return len(data), nil, nil
		}

		s.discarding = false
		if end > 0 {
			return end, nil, nil
		}
	}

	advance, token, err := bufio.ScanWords(data, atEOF)
	if err != nil || token != nil || atEOF {
		return advance, token, err
	}

	if len(data) >= s.maxTokenSize {
		// The buffer is full and still holds no complete token
		s.discarding = true
		return len(data), []byte(oversizedToken), nil
	}

	return advance, nil, nil
}

func indexSpace(data []byte) int {
	for i := 0; i < len(data); {
		r, width := utf8.DecodeRune(data[i:])
		if unicode.IsSpace(r) {
			return i
		}
		i += width
	}
	return -1
}

func newTokenScanner(s *bufio.Scanner, maxTokenSize int) *bufio.Scanner {
	s.Buffer(make([]byte, 0, min(4096, maxTokenSize)), maxTokenSize)
	s.Split(newTokenSplitter(maxTokenSize).Split)
	return s
}
