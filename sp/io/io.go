// Package io provides stream adapters for files, readers and writers. Text
// lines, CSV records and glob matches are read as bounded streams; sinks
// write a stream out.
package io

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Lines returns the lines of r, without their line endings, as a bounded
// stream. The first line is read before Lines returns, so an empty reader
// is ErrExhausted. Read failures other than io.EOF are returned as they are.
func Lines(r io.Reader) (core.Stream[string], error) {
	scanner := bufio.NewScanner(r)
	return pull(func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	})
}

// ReadLines opens the file at path and returns its lines. The returned
// close function releases the file; the stream must not be advanced after
// it is called.
func ReadLines(path string) (core.Stream[string], func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("io: open: %w", err)
	}
	s, err := Lines(f)
	if err != nil {
		return nil, nil, errors.Join(err, f.Close())
	}
	return s, f.Close, nil
}

// Glob returns the paths matching pattern, in lexical order, as a bounded
// stream. A pattern that matches nothing is ErrExhausted.
func Glob(pattern string) (core.Stream[string], error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("io: glob: %w", err)
	}
	return pull(func() (string, error) {
		if len(matches) == 0 {
			return "", io.EOF
		}
		m := matches[0]
		matches = matches[1:]
		return m, nil
	})
}

// ReaderOption configures a CSV reader.
type ReaderOption func(*csv.Reader)

// WithComma sets the field delimiter. Default is ','.
func WithComma(comma rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = comma
	}
}

// WithComment sets the comment character. Lines beginning with the comment
// character are ignored.
func WithComment(comment rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comment = comment
	}
}

// WithFieldsPerRecord sets the expected number of fields per record.
// If 0, the first record sets the count; if negative, no check is made.
func WithFieldsPerRecord(n int) ReaderOption {
	return func(r *csv.Reader) {
		r.FieldsPerRecord = n
	}
}

// WithLazyQuotes allows a quote to appear in an unquoted field.
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(r *csv.Reader) {
		r.LazyQuotes = lazy
	}
}

// WithTrimLeadingSpace trims leading white space in a field.
func WithTrimLeadingSpace(trim bool) ReaderOption {
	return func(r *csv.Reader) {
		r.TrimLeadingSpace = trim
	}
}

// Records returns the CSV records of r as a bounded stream. A malformed
// record fails the stream at that position.
func Records(r io.Reader, opts ...ReaderOption) (core.Stream[[]string], error) {
	reader := csv.NewReader(r)
	for _, opt := range opts {
		opt(reader)
	}
	return pull(reader.Read)
}

// SkipHeader drops the first record and passes the others through.
func SkipHeader() core.Processor[[]string, []string] {
	return core.Get(func([]string) core.Processor[[]string, []string] {
		return core.Identity[[]string]()
	})
}

// WriteLines writes every element of the bounded stream s to w, one per
// line, and returns how many were written.
func WriteLines(w io.Writer, s core.Stream[string]) (int, error) {
	bw := bufio.NewWriter(w)
	n, err := drain(s, func(line string) error {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	return n, errors.Join(err, bw.Flush())
}

// WriteRecords writes every record of the bounded stream s to w as CSV and
// returns how many were written.
func WriteRecords(w io.Writer, s core.Stream[[]string]) (int, error) {
	cw := csv.NewWriter(w)
	n, err := drain(s, cw.Write)
	cw.Flush()
	return n, errors.Join(err, cw.Error())
}

func drain[T any](s core.Stream[T], write func(T) error) (int, error) {
	n := 0
	for {
		if err := write(s.Head()); err != nil {
			return n, fmt.Errorf("io: write: %w", err)
		}
		n++
		next, err := s.Tail()
		if err != nil {
			if core.IsExhausted(err) {
				return n, nil
			}
			return n, err
		}
		s = next
	}
}

// pull builds a stream over read, mapping io.EOF to ErrExhausted.
func pull[T any](read func() (T, error)) (core.Stream[T], error) {
	v, err := read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.ErrExhausted
		}
		return nil, fmt.Errorf("io: read: %w", err)
	}
	return &node[T]{head: v, read: read}, nil
}

// node is one element of a reader-backed stream. Its tail is read at most
// once.
type node[T any] struct {
	head T
	read func() (T, error)

	once sync.Once
	tail core.Stream[T]
	err  error
}

func (n *node[T]) Head() T {
	return n.head
}

func (n *node[T]) Tail() (core.Stream[T], error) {
	n.once.Do(func() {
		n.tail, n.err = pull(n.read)
		n.read = nil
	})
	return n.tail, n.err
}
