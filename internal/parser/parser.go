// Package parser defines the contract shared by the raw-file readers: turn a
// byte stream into a table of loosely typed cells.
package parser

import (
	"io"

	"vlingest/pkg/records"
)

// Parser reads a whole input into a table. The int result counts rows that
// were skipped as malformed.
type Parser interface {
	Parse(r io.Reader) (records.Table, int, error)
}

// Func adapts a function to Parser.
type Func func(r io.Reader) (records.Table, int, error)

// Parse calls f(r).
func (f Func) Parse(r io.Reader) (records.Table, int, error) { return f(r) }
