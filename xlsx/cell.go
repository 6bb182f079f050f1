// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/exceldate"
	"github.com/UNO-SOFT/xlstream/styles"
	"github.com/UNO-SOFT/xlstream/xmlw"
	"github.com/xuri/excelize/v2"
	"google.golang.org/genproto/googleapis/type/date"
)

// DataType is the spreadsheet type a cell value is written as.
type DataType uint8

const (
	String DataType = iota
	Number
	DateTime
	Other
)

func (t DataType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case DateTime:
		return "datetime"
	case Other:
		return "other"
	default:
		return "DataType(" + strconv.Itoa(int(t)) + ")"
	}
}

const (
	// MaxCellLength is the number of UTF-16 code units a cell can hold.
	MaxCellLength = 32767
	// wrapLength is the length over which the text is wrapped.
	wrapLength = 200
)

// Size of a merged range, in cells.
type Size struct {
	Cols, Rows int
}

// Cell is one typed value with its formatting.
//
// The zero Cell has no value and no formatting.
type Cell struct {
	Font              *styles.Font
	Background        styles.Color
	Foreground        styles.Color
	Alignment         styles.HAlign
	VerticalAlignment styles.VAlign
	Indent            int
	// Format is a custom number format code.
	Format string
	// Merge spans the cell over the given range, if it is bigger than 1x1.
	Merge Size
	Type  DataType

	value    any
	wrapText bool
}

// NewCell returns a cell with the given value and type.
func NewCell(value any, typ DataType) *Cell {
	c := Cell{Type: typ}
	c.SetValue(value)
	return &c
}

// SetValue sets the value, and derives whether the text needs wrapping.
func (c *Cell) SetValue(value any) {
	c.value = value
	c.wrapText = false
	if value != nil {
		s := stringOf(value)
		c.wrapText = strings.Contains(s, "\n") || utf16Len(s) > wrapLength
	}
}

// Value returns the value of the cell.
func (c *Cell) Value() any { return c.value }

// WrapText reports whether the value is multi-line or long.
func (c *Cell) WrapText() bool { return c.wrapText }

// Descriptor returns the style of the cell. The zero descriptor means unstyled.
func (c *Cell) Descriptor() styles.Descriptor {
	d := styles.Descriptor{
		Background: c.Background,
		Foreground: c.Foreground,
		Horizontal: c.Alignment,
		Vertical:   c.VerticalAlignment,
		Indent:     c.Indent,
		WrapText:   c.wrapText,
		IsDate:     c.Type == DateTime,
		Format:     c.Format,
	}
	if c.Font != nil {
		d.Font = *c.Font
	}
	return d
}

// ColumnLetter returns the column name of the 1-based column index: A, B, ..., Z, AA, AB, ...
func ColumnLetter(col int) (string, error) {
	return excelize.ColumnNumberToName(col)
}

// Encode writes the cell at (col, row), both 1-based, to w.
//
// Nothing is written for a nil value, or for a Number or DateTime value that cannot be parsed.
// A style index is allocated in sc only for formatted cells.
func (c *Cell) Encode(w *xmlw.Writer, col, row int, sc *styles.Cache) {
	c.encode(w, col, row, sc)
}

// encode reports whether the cell element has been written.
func (c *Cell) encode(w *xmlw.Writer, col, row int, sc *styles.Cache) bool {
	if c == nil || c.value == nil {
		return false
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	var typ, text string
	switch c.Type {
	case Number:
		f, ok := numberOf(c.value)
		if !ok {
			return false
		}
		typ, text = "n", formatNumber(f)
	case DateTime:
		f, ok := serialOf(c.value)
		if !ok {
			return false
		}
		text = exceldate.FormatSerial(f)
	case Other:
		typ, text = "str", stringOf(c.value)
	default:
		typ, text = "inlineStr", truncate(stringOf(c.value), MaxCellLength)
	}

	attrs := make([]xml.Attr, 1, 3)
	attrs[0] = xmlw.Attr("r", ref)
	if d := c.Descriptor(); !d.IsZero() {
		attrs = append(attrs, xmlw.Attr("s", strconv.Itoa(sc.Intern(d))))
	}
	if typ != "" {
		attrs = append(attrs, xmlw.Attr("t", typ))
	}
	w.Start("c", attrs...)
	if typ == "inlineStr" {
		w.Start("is")
		w.Leaf("t", text, preserveSpace)
		w.End()
	} else {
		w.Leaf("v", text)
	}
	w.End()
	return true
}

var preserveSpace = xmlw.Attr("xml:space", "preserve")

// stringOf returns the invariant string form of v.
func stringOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case xlstream.Number:
		return string(x)
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02T15:04:05")
	case *date.Date:
		return fmt.Sprintf("%04d-%02d-%02d", x.GetYear(), x.GetMonth(), x.GetDay())
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func numberOf(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	default:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(stringOf(v)), 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func serialOf(v any) (float64, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return 0, false
		}
		return exceldate.SerialDay(x), true
	case *date.Date:
		if x == nil {
			return 0, false
		}
		return exceldate.SerialDate(x), true
	}
	t, ok := exceldate.Parse(stringOf(v))
	if !ok {
		return 0, false
	}
	return exceldate.SerialDay(t), true
}

// formatNumber formats f in invariant form, with exponent only for very big or small numbers.
func formatNumber(f float64) string {
	if a := math.Abs(f); a == 0 || (a >= 1e-7 && a < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'E', -1, 64)
}

// truncate s to at most n UTF-16 code units, on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	var i int
	for j, r := range s {
		if i += runeLen(r); i > n {
			return s[:j]
		}
	}
	return s
}

// utf16Len returns the length of s in UTF-16 code units, as Excel counts.
func utf16Len(s string) int {
	var n int
	for _, r := range s {
		n += runeLen(r)
	}
	return n
}

func runeLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
