// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sqlsource streams the rows of a database/sql query into a sheet.
package sqlsource

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/xlsx"
)

var _ = (xlsx.RowRequester)((*Source)(nil))

// Source is a xlsx.RowRequester reading one row from the query result per request.
type Source struct {
	rows    *sql.Rows
	columns []xlstream.Column
	types   []xlsx.DataType
	dest    []any
	err     error
	done    bool
}

// New returns a Source for the rows. The caller remains responsible for closing rows.
func New(rows *sql.Rows) (*Source, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	s := Source{
		rows:    rows,
		columns: make([]xlstream.Column, len(cts)),
		types:   make([]xlsx.DataType, len(cts)),
		dest:    make([]any, len(cts)),
	}
	for i, ct := range cts {
		s.types[i] = TypeOf(ct.DatabaseTypeName())
		s.columns[i] = xlstream.Column{Name: ct.Name(), Header: xlstream.Style{FontBold: true}}
		s.dest[i] = new(any)
	}
	return &s, nil
}

var numberTypes = map[string]bool{
	"INT": true, "INTEGER": true, "TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "BIGINT": true,
	"INT2": true, "INT4": true, "INT8": true, "UNSIGNED BIG INT": true,
	"SERIAL": true, "BIGSERIAL": true,
	"NUMERIC": true, "NUMBER": true, "DECIMAL": true, "DEC": true, "MONEY": true,
	"REAL": true, "FLOAT": true, "FLOAT4": true, "FLOAT8": true, "DOUBLE": true, "DOUBLE PRECISION": true,
}

// TypeOf maps a database type name to the cell data type.
func TypeOf(dbType string) xlsx.DataType {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch {
	case t == "INTERVAL":
		return xlsx.String
	case strings.HasPrefix(t, "DATE"), strings.HasPrefix(t, "TIME"):
		return xlsx.DateTime
	case numberTypes[t]:
		return xlsx.Number
	case t == "BOOL", t == "BOOLEAN":
		return xlsx.Other
	}
	return xlsx.String
}

// Columns returns the result columns, named with bold header.
func (s *Source) Columns() []xlstream.Column { return s.columns }

// Types returns the data types of the result columns.
func (s *Source) Types() []xlsx.DataType { return s.types }

// Table returns a table of the remaining rows.
func (s *Source) Table(name string) *xlsx.Table { return xlsx.NewTable(name, s.columns, s) }

// RequestRow implements xlsx.RowRequester.
//
// The end of the result and any error finish the stream; see Err.
func (s *Source) RequestRow(req *xlsx.RowRequest) {
	if s.done {
		req.Finished = true
		return
	}
	if !s.rows.Next() {
		s.done, req.Finished = true, true
		if err := s.rows.Err(); err != nil {
			s.err = fmt.Errorf("next: %w", err)
		}
		return
	}
	if err := s.rows.Scan(s.dest...); err != nil {
		s.done, req.Finished = true, true
		s.err = fmt.Errorf("scan: %w", err)
		return
	}
	row := xlsx.NewRow()
	row.Cells = make([]*xlsx.Cell, len(s.dest))
	for i, p := range s.dest {
		v := *(p.(*any))
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row.Cells[i] = xlsx.NewCell(v, s.types[i])
	}
	req.Row = row
}

// Err returns the error that finished the stream, if any.
func (s *Source) Err() error { return s.err }
