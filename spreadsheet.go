// Copyright 2020, Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlstream is the common interface of the spreadsheet writers.
//
// The xlsx subpackage streams rows into an Office Open XML workbook,
// keeping only the current row and the style table in memory.
package xlstream

import (
	"errors"
	"io"
)

// Writer writes the spreadsheet consisting of the sheets created
// with NewSheet. The write finishes when Close is called.
//
// A writer that streams its output allows only one open sheet:
// creating a new sheet closes the previous one.
type Writer interface {
	io.Closer
	NewSheet(name string, cols []Column) (Sheet, error)
}

// Sheet should be Closed when finished.
type Sheet interface {
	io.Closer
	AppendRow(values ...any) error
}

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// IsZero reports whether the style is the default one.
func (s Style) IsZero() bool { return s == Style{} }

// Column contains the Name of the column and header's style and column's style.
type Column struct {
	Name           string
	Header, Column Style
	// Width in characters, 0 means the default.
	Width float64
}

var (
	ErrTooManyRows = errors.New("too many rows")
	ErrSheetName   = errors.New("invalid sheet name")
)

// Number is a string that contains a number.
type Number string

// HasHeader reports whether any of the columns is named.
func HasHeader(cols []Column) bool {
	for _, c := range cols {
		if c.Name != "" {
			return true
		}
	}
	return false
}
