// Package json provides processors for JSON documents: decoding into Go
// values, encoding, and path queries over raw documents.
//
// Decoding is fallible per element, so the processors emit core.Result
// values and keep running after a malformed document.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/lguimbarda/min-sp/sp/core"
)

// ErrInvalid is returned by Path for documents that are not well-formed JSON.
var ErrInvalid = errors.New("json: invalid document")

// ErrNoMatch is returned by Path when a document has no value at the path.
var ErrNoMatch = errors.New("json: no value at path")

// Decode returns a processor decoding each document into a T.
func Decode[T any]() core.Processor[[]byte, core.Result[T]] {
	return core.Map(decode[T])
}

// DecodeString is Decode for documents held in strings.
func DecodeString[T any]() core.Processor[string, core.Result[T]] {
	return core.Map(func(s string) core.Result[T] {
		return decode[T]([]byte(s))
	})
}

func decode[T any](data []byte) core.Result[T] {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return core.Err[T](fmt.Errorf("json: decode: %w", err))
	}
	return core.Ok(v)
}

// Encode returns a processor encoding each value as a JSON document.
func Encode[T any]() core.Processor[T, core.Result[[]byte]] {
	return core.Map(func(v T) core.Result[[]byte] {
		data, err := json.Marshal(v)
		if err != nil {
			return core.Err[[]byte](fmt.Errorf("json: encode: %w", err))
		}
		return core.Ok(data)
	})
}

// Path returns a processor extracting the value at path (gjson syntax,
// for example "user.name" or "items.#.id") from each document.
func Path(path string) core.Processor[[]byte, core.Result[gjson.Result]] {
	return core.Map(func(data []byte) core.Result[gjson.Result] {
		if !gjson.ValidBytes(data) {
			return core.Err[gjson.Result](ErrInvalid)
		}
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return core.Err[gjson.Result](fmt.Errorf("%w: %q", ErrNoMatch, path))
		}
		return core.Ok(res)
	})
}

// Valid passes through the documents that are well-formed JSON and drops
// the others.
func Valid() core.Processor[[]byte, []byte] {
	var sp core.Processor[[]byte, []byte]
	sp = core.Get(func(data []byte) core.Processor[[]byte, []byte] {
		if gjson.ValidBytes(data) {
			return core.Emit(data, sp)
		}
		return sp
	})
	return sp
}

// DecodeStream returns the concatenated JSON values of r, for example
// newline-delimited JSON, as a bounded stream.
func DecodeStream[T any](r io.Reader) (core.Stream[T], error) {
	return next[T](json.NewDecoder(r))
}

func next[T any](dec *json.Decoder) (core.Stream[T], error) {
	var v T
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.ErrExhausted
		}
		return nil, fmt.Errorf("json: decode: %w", err)
	}
	return &decoded[T]{head: v, dec: dec}, nil
}

type decoded[T any] struct {
	head T
	dec  *json.Decoder

	once sync.Once
	tail core.Stream[T]
	err  error
}

func (d *decoded[T]) Head() T {
	return d.head
}

func (d *decoded[T]) Tail() (core.Stream[T], error) {
	d.once.Do(func() {
		d.tail, d.err = next[T](d.dec)
		d.dec = nil
	})
	return d.tail, d.err
}
