package ifcgeom

import (
	"errors"
	"fmt"
)

// ErrNoElements is returned by Initialize when a stream holds no elements.
var ErrNoElements = errors.New("element stream contains no elements")

// StreamIterator walks the elements of a stream one at a time. It is the
// pull cursor the importer consumes: Initialize once, then Current until
// Next returns false.
type StreamIterator struct {
	load     func() (*Stream, error)
	elements []Element
	pos      int
}

// NewFileIterator returns an iterator that reads the stream at path when
// initialized.
func NewFileIterator(path, charset string) *StreamIterator {
	return &StreamIterator{
		load: func() (*Stream, error) {
			return ParseStreamFile(path, charset)
		},
	}
}

// NewStreamIterator returns an iterator over an already decoded stream.
func NewStreamIterator(s *Stream) *StreamIterator {
	return &StreamIterator{
		load: func() (*Stream, error) {
			return s, nil
		},
	}
}

// Initialize loads the stream and positions the iterator on the first
// element.
func (it *StreamIterator) Initialize() error {
	s, err := it.load()
	if err != nil {
		return fmt.Errorf("initializing iterator: %w", err)
	}
	if len(s.Elements) == 0 {
		return ErrNoElements
	}
	it.elements = s.Elements
	it.pos = 0
	return nil
}

// Current returns the element under the cursor.
// Returns nil before Initialize or after the last element.
func (it *StreamIterator) Current() *Element {
	if it.pos < 0 || it.pos >= len(it.elements) {
		return nil
	}
	return &it.elements[it.pos]
}

// Next advances the cursor and reports whether an element is available.
func (it *StreamIterator) Next() bool {
	if it.pos >= len(it.elements) {
		return false
	}
	it.pos++
	return it.pos < len(it.elements)
}

// Progress returns the fraction of elements reached, in [0, 1].
func (it *StreamIterator) Progress() float64 {
	if len(it.elements) == 0 {
		return 0
	}
	done := it.pos + 1
	if done > len(it.elements) {
		done = len(it.elements)
	}
	return float64(done) / float64(len(it.elements))
}

// Len returns the number of elements, valid after Initialize.
func (it *StreamIterator) Len() int {
	return len(it.elements)
}
