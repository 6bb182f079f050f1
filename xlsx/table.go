// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"errors"
	"fmt"
	"iter"

	"github.com/UNO-SOFT/xlstream"
)

// ErrResetUnsupported is returned by Enumerator.Reset: a row stream cannot be restarted.
var ErrResetUnsupported = fmt.Errorf("reset row stream: %w", errors.ErrUnsupported)

// Row is the ordered cells of one worksheet row. Nil cells are skipped.
type Row struct {
	Cells []*Cell
}

// NewRow returns a Row of the given cells.
func NewRow(cells ...*Cell) *Row { return &Row{Cells: cells} }

// RowRequest is filled by a RowRequester.
//
// A nil Row ends the stream, just as Finished does after the returned Row.
type RowRequest struct {
	Row      *Row
	Finished bool
}

// RowRequester produces the next row on request.
//
// RequestRow is called synchronously, at most once per Enumerator.Next,
// and should return promptly.
type RowRequester interface {
	RequestRow(*RowRequest)
}

// RequestFunc is a function RowRequester.
type RequestFunc func(*RowRequest)

// RequestRow calls f.
func (f RequestFunc) RequestRow(req *RowRequest) { f(req) }

// Table is a forward-only stream of rows, produced on demand.
type Table struct {
	// Name is the name of the sheet the table is written to.
	Name string
	// Columns are the header and column styles.
	Columns []xlstream.Column

	src RowRequester
}

// NewTable returns a Table pulling its rows from src.
func NewTable(name string, columns []xlstream.Column, src RowRequester) *Table {
	return &Table{Name: name, Columns: columns, src: src}
}

// Rows returns an Enumerator over the rows of the table.
//
// The rows are pulled from the underlying RowRequester, so
// they can be enumerated only once.
func (t *Table) Rows() *Enumerator { return &Enumerator{src: t.src} }

// Enumerator pulls rows one by one. Only the current row is retained.
type Enumerator struct {
	src       RowRequester
	current   *Row
	itemsRead int
	exhausted bool
}

// Next requests the next row, and reports whether there is one.
//
// After it returned false, it always returns false without requesting more rows.
func (e *Enumerator) Next() bool {
	if e.exhausted || e.src == nil {
		e.exhausted, e.current = true, nil
		return false
	}
	var req RowRequest
	e.src.RequestRow(&req)
	if req.Finished {
		e.exhausted = true
	}
	e.current = req.Row
	if req.Row == nil {
		e.exhausted = true
		return false
	}
	e.itemsRead++
	return true
}

// Row returns the current row, nil before the first or after the last Next.
func (e *Enumerator) Row() *Row { return e.current }

// ItemsRead returns the number of rows returned so far.
func (e *Enumerator) ItemsRead() int { return e.itemsRead }

// Reset always fails with ErrResetUnsupported.
func (e *Enumerator) Reset() error { return ErrResetUnsupported }

// All returns an iterator over the remaining rows.
func (e *Enumerator) All() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		for e.Next() {
			if !yield(e.current) {
				return
			}
		}
	}
}
