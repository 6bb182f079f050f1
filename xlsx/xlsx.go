// Copyright 2020, 2023 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx streams rows into an Office Open XML (.xlsx) workbook.
//
// Rows are encoded as they arrive, directly into the compressed package,
// so only the current row, the style table and the built charts are kept in memory.
package xlsx

import (
	"database/sql/driver"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/chart"
	"github.com/UNO-SOFT/xlstream/styles"
	"github.com/UNO-SOFT/xlstream/xmlw"
	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
	"google.golang.org/genproto/googleapis/type/date"
)

var _ = (xlstream.Writer)((*Writer)(nil))
var _ = (xlstream.Sheet)((*Sheet)(nil))

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

// MaxSheetNameLength is the maximal length of a sheet name, in UTF-16 code units.
const MaxSheetNameLength = 31

var (
	ErrClosed     = errors.New("writer is closed")
	ErrSheetClose = errors.New("sheet is closed")
)

// Writer writes a workbook as a zip stream.
//
// Only one sheet can be written at a time: NewSheet closes the previous sheet.
type Writer struct {
	zw       *zip.Writer
	logger   *slog.Logger
	styles   *styles.Cache
	charts   *chart.Builder
	chartErr error
	names    []string
	current  *Sheet
	drawings int
	nCharts  int
	closed   bool
	mu       sync.Mutex
}

// Option of a Writer.
type Option func(*Writer)

// WithLogger sets the logger, which logs the skipped cells on debug level.
func WithLogger(lgr *slog.Logger) Option {
	return func(w *Writer) {
		if lgr != nil {
			w.logger = lgr
		}
	}
}

// WithChartConfig sets the palette and axis ids of the charts.
// An invalid config makes AddChart fail.
func WithChartConfig(cfg chart.Config) Option {
	return func(w *Writer) { w.charts, w.chartErr = chart.NewBuilder(cfg) }
}

// NewWriter returns a new xlstream.Writer, writing the package to w.
//
// The package is complete only after Close.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	xlw := Writer{
		zw:     zip.NewWriter(w),
		logger: slog.New(slog.DiscardHandler),
		styles: styles.NewCache(),
	}
	xlw.charts, xlw.chartErr = chart.NewBuilder(chart.DefaultConfig())
	for _, o := range opts {
		o(&xlw)
	}
	return &xlw
}

// Close closes the open sheet, writes the workbook parts and finishes the package.
//
// A workbook without sheets gets an empty "Sheet1".
func (xlw *Writer) Close() error {
	if xlw == nil {
		return nil
	}
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	if xlw.closed {
		return nil
	}
	if len(xlw.names) == 0 {
		if _, err := xlw.addSheet("Sheet1", nil); err != nil {
			return err
		}
	}
	if err := xlw.closeCurrent(); err != nil {
		return err
	}
	xlw.closed = true

	rels := make([]rel, 0, len(xlw.names)+1)
	for i := range xlw.names {
		rels = append(rels, rel{ID: relID(i + 1), Type: relWorksheet, Target: "worksheets/sheet" + strconv.Itoa(i+1) + ".xml"})
	}
	rels = append(rels, rel{ID: relID(len(xlw.names) + 1), Type: relStyles, Target: "styles.xml"})
	for _, p := range []struct {
		Name  string
		Write func(io.Writer) error
	}{
		{"xl/styles.xml", xlw.styles.WriteXML},
		{"xl/workbook.xml", func(w io.Writer) error { return writeWorkbook(w, xlw.names) }},
		{"xl/_rels/workbook.xml.rels", func(w io.Writer) error { return writeRels(w, rels) }},
		{"_rels/.rels", func(w io.Writer) error {
			return writeRels(w, []rel{{ID: relID(1), Type: relOfficeDocument, Target: "xl/workbook.xml"}})
		}},
		{"[Content_Types].xml", func(w io.Writer) error {
			return writeContentTypes(w, len(xlw.names), xlw.drawings, xlw.nCharts)
		}},
	} {
		if err := xlw.writePart(p.Name, p.Write); err != nil {
			return err
		}
	}
	return xlw.zw.Close()
}

func (xlw *Writer) writePart(name string, write func(io.Writer) error) error {
	w, err := xlw.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err = write(w); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// NewSheet implements xlstream.Writer.
func (xlw *Writer) NewSheet(name string, columns []xlstream.Column) (xlstream.Sheet, error) {
	return xlw.AddSheet(name, columns)
}

// AddSheet closes the current sheet and starts a new one.
//
// A header row is written if any of the columns has a Name.
func (xlw *Writer) AddSheet(name string, columns []xlstream.Column) (*Sheet, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	if xlw.closed {
		return nil, ErrClosed
	}
	return xlw.addSheet(name, columns)
}

// WriteTable writes the table to a new sheet, named after the table, and closes that sheet.
// It returns the number of rows read from the table.
func (xlw *Writer) WriteTable(t *Table) (int, error) {
	sh, err := xlw.AddSheet(t.Name, t.Columns)
	if err != nil {
		return 0, err
	}
	n, err := sh.WriteTable(t)
	if closeErr := sh.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return n, err
}

// CheckSheetName returns an error wrapping xlstream.ErrSheetName if name is not usable as a sheet name.
func CheckSheetName(name string) error {
	if name == "" || utf16Len(name) > MaxSheetNameLength {
		return fmt.Errorf("%q: length must be between 1 and %d: %w", name, MaxSheetNameLength, xlstream.ErrSheetName)
	}
	if i := strings.IndexAny(name, `[]:*?/\`); i >= 0 {
		return fmt.Errorf("%q: %q is not allowed: %w", name, name[i:i+1], xlstream.ErrSheetName)
	}
	if name[0] == '\'' || name[len(name)-1] == '\'' {
		return fmt.Errorf("%q: cannot start or end with an apostrophe: %w", name, xlstream.ErrSheetName)
	}
	return nil
}

func (xlw *Writer) addSheet(name string, columns []xlstream.Column) (*Sheet, error) {
	if err := CheckSheetName(name); err != nil {
		return nil, err
	}
	for _, nm := range xlw.names {
		if strings.EqualFold(nm, name) {
			return nil, fmt.Errorf("%q: duplicate: %w", name, xlstream.ErrSheetName)
		}
	}
	if err := xlw.closeCurrent(); err != nil {
		return nil, err
	}
	xlw.names = append(xlw.names, name)
	index := len(xlw.names)
	part, err := xlw.zw.Create(sheetPath(index))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", sheetPath(index), err)
	}
	xls := &Sheet{
		Name:    name,
		w:       xlw,
		index:   index,
		xw:      xmlw.New(part),
		columns: columns,
	}
	xlw.current = xls
	if err = xls.start(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return xls, nil
}

func (xlw *Writer) closeCurrent() error {
	cur := xlw.current
	xlw.current = nil
	if cur == nil {
		return nil
	}
	return cur.finish()
}

// Sheet is a worksheet being streamed.
type Sheet struct {
	// Name of the sheet.
	Name    string
	w       *Writer
	xw      *xmlw.Writer
	columns []xlstream.Column
	merges  []string
	charts  []placedChart
	index   int
	row     int
	closed  bool
}

type placedChart struct {
	space *chart.Node
	loc   chart.Location
}

func styleOf(s xlstream.Style) styles.Descriptor {
	var d styles.Descriptor
	d.Font.Bold = s.FontBold
	d.Format = s.Format
	return d
}

// start writes the beginning of the worksheet: the column definitions and the header row.
func (xls *Sheet) start() error {
	w := xls.xw
	w.Header()
	w.Start("worksheet", xmlw.Attr("xmlns", nsMain), xmlw.Attr("xmlns:r", nsRel))
	var hasCols bool
	for _, c := range xls.columns {
		if c.Width > 0 || !c.Column.IsZero() {
			hasCols = true
			break
		}
	}
	if hasCols {
		w.Start("cols")
		for i, c := range xls.columns {
			if c.Width <= 0 && c.Column.IsZero() {
				continue
			}
			idx := strconv.Itoa(i + 1)
			attrs := []xml.Attr{xmlw.Attr("min", idx), xmlw.Attr("max", idx)}
			if c.Width > 0 {
				attrs = append(attrs,
					xmlw.Attr("width", strconv.FormatFloat(c.Width, 'f', -1, 64)),
					xmlw.Attr("customWidth", "1"))
			} else {
				attrs = append(attrs, xmlw.Attr("width", "9.140625"))
			}
			if !c.Column.IsZero() {
				attrs = append(attrs, xmlw.Attr("style", strconv.Itoa(xls.w.styles.Intern(styleOf(c.Column)))))
			}
			w.Empty("col", attrs...)
		}
		w.End()
	}
	w.Start("sheetData")
	if !hasHeaderRow(xls.columns) {
		return w.Err()
	}
	hdr := NewRow()
	for _, c := range xls.columns {
		if c.Name == "" && c.Header.IsZero() {
			hdr.Cells = append(hdr.Cells, nil)
			continue
		}
		// An unnamed column with a header style gets an empty styled cell.
		cell := NewCell(c.Name, String)
		if c.Header.FontBold {
			cell.Font = &styles.Font{Bold: true}
		}
		cell.Format = c.Header.Format
		hdr.Cells = append(hdr.Cells, cell)
	}
	return xls.writeRow(hdr)
}

// hasHeaderRow reports whether any column has a header name or style.
func hasHeaderRow(columns []xlstream.Column) bool {
	if xlstream.HasHeader(columns) {
		return true
	}
	for _, c := range columns {
		if !c.Header.IsZero() {
			return true
		}
	}
	return false
}

// Close finishes the sheet. The sheet cannot be written afterwards.
//
// Only the open sheet of the Writer can be closed: closing an already
// closed sheet is a no-op.
func (xls *Sheet) Close() error {
	xls.w.mu.Lock()
	defer xls.w.mu.Unlock()
	if xls.closed || xls.w.current != xls {
		return nil
	}
	xls.w.current = nil
	return xls.finish()
}

// finish writes the end of the worksheet and its drawing with the charts.
func (xls *Sheet) finish() error {
	if xls.closed {
		return nil
	}
	xls.closed = true
	w := xls.xw
	w.End() // sheetData
	if len(xls.merges) != 0 {
		w.Start("mergeCells", xmlw.Attr("count", strconv.Itoa(len(xls.merges))))
		for _, ref := range xls.merges {
			w.Empty("mergeCell", xmlw.Attr("ref", ref))
		}
		w.End()
	}
	if len(xls.charts) != 0 {
		w.Empty("drawing", xmlw.Attr("r:id", relID(1)))
	}
	w.End() // worksheet
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%s: %w", xls.Name, err)
	}
	if len(xls.charts) == 0 {
		return nil
	}
	return xls.writeCharts()
}

func (xls *Sheet) writeCharts() error {
	xlw := xls.w
	xlw.drawings++
	dPath := drawingPath(xlw.drawings)
	if err := xlw.writePart(relsPath(sheetPath(xls.index)), func(w io.Writer) error {
		return writeRels(w, []rel{{ID: relID(1), Type: relDrawing, Target: "../drawings/drawing" + strconv.Itoa(xlw.drawings) + ".xml"}})
	}); err != nil {
		return err
	}

	drawing := chart.NewDrawing()
	rels := make([]rel, 0, len(xls.charts))
	first := xlw.nCharts + 1
	for i, c := range xls.charts {
		id := relID(i + 1)
		xlw.charts.SetLocation(drawing, id, c.loc)
		rels = append(rels, rel{ID: id, Type: relChart, Target: "../charts/chart" + strconv.Itoa(first+i) + ".xml"})
	}
	if err := xlw.writePart(dPath, nodeWriter(drawing)); err != nil {
		return err
	}
	if err := xlw.writePart(relsPath(dPath), func(w io.Writer) error { return writeRels(w, rels) }); err != nil {
		return err
	}
	for _, c := range xls.charts {
		xlw.nCharts++
		if err := xlw.writePart(chartPath(xlw.nCharts), nodeWriter(c.space)); err != nil {
			return err
		}
	}
	xls.charts = nil
	return nil
}

func nodeWriter(n *chart.Node) func(io.Writer) error {
	return func(w io.Writer) error {
		xw := xmlw.New(w)
		xw.Header()
		n.Encode(xw)
		return xw.Flush()
	}
}

// AddChart builds the chart and places it on the sheet at loc.
// The chart parts are written when the sheet is closed.
func (xls *Sheet) AddChart(spec chart.Spec, data chart.Data, loc chart.Location) error {
	xls.w.mu.Lock()
	defer xls.w.mu.Unlock()
	if xls.closed {
		return ErrSheetClose
	}
	if xls.w.chartErr != nil {
		return xls.w.chartErr
	}
	space, err := xls.w.charts.Build(spec, data)
	if err != nil {
		return fmt.Errorf("%s: %w", xls.Name, err)
	}
	xls.charts = append(xls.charts, placedChart{space: space, loc: loc})
	return nil
}

// AppendRow converts the values to cells, and writes them as the next row.
//
// Values implementing driver.Valuer are converted first.
// Converted values (but not *Cell) get the style of their column.
func (xls *Sheet) AppendRow(values ...any) error {
	row := NewRow()
	row.Cells = make([]*Cell, len(values))
	for i, v := range values {
		c := cellOf(v)
		if c == nil {
			continue
		}
		if _, isCell := v.(*Cell); !isCell && i < len(xls.columns) {
			if s := xls.columns[i].Column; !s.IsZero() {
				if c.Format == "" {
					c.Format = s.Format
				}
				if s.FontBold && c.Font == nil {
					c.Font = &styles.Font{Bold: true}
				}
			}
		}
		row.Cells[i] = c
	}
	return xls.WriteRow(row)
}

// cellOf returns the typed cell for v, nil for nil values.
func cellOf(v any) *Cell {
	if v == nil {
		return nil
	}
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			if vv == nil {
				return nil
			}
			v = vv
		}
	}
	switch x := v.(type) {
	case *Cell:
		return x
	case Cell:
		return &x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return NewCell(x, DateTime)
	case *date.Date:
		if x == nil {
			return nil
		}
		return NewCell(x, DateTime)
	case xlstream.Number, float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return NewCell(x, Number)
	case bool:
		return NewCell(x, Other)
	case string:
		return NewCell(x, String)
	case []byte:
		return NewCell(string(x), String)
	case fmt.Stringer:
		return NewCell(x.String(), String)
	default:
		return NewCell(fmt.Sprint(x), String)
	}
}

// WriteRow writes the row as the next one.
// Merged cells are collected, to be written at the end of the sheet.
func (xls *Sheet) WriteRow(row *Row) error {
	xls.w.mu.Lock()
	defer xls.w.mu.Unlock()
	if xls.closed {
		return ErrSheetClose
	}
	return xls.writeRow(row)
}

func (xls *Sheet) writeRow(row *Row) error {
	if xls.row >= MaxRowCount {
		return xlstream.ErrTooManyRows
	}
	xls.row++
	w := xls.xw
	w.Start("row", xmlw.Attr("r", strconv.Itoa(xls.row)))
	if row != nil {
		for i, c := range row.Cells {
			if c == nil {
				continue
			}
			col := i + 1
			if !c.encode(w, col, xls.row, xls.w.styles) {
				if c.value != nil {
					xls.w.logger.Debug("skip cell", "sheet", xls.Name, "col", col, "row", xls.row, "type", c.Type, "value", c.value)
				}
			}
			if c.Merge.Cols > 1 || c.Merge.Rows > 1 {
				if ref, err := mergeRef(col, xls.row, c.Merge); err == nil {
					xls.merges = append(xls.merges, ref)
				} else {
					xls.w.logger.Debug("skip merge", "sheet", xls.Name, "col", col, "row", xls.row, "error", err)
				}
			}
		}
	}
	w.End()
	if err := w.Err(); err != nil {
		return fmt.Errorf("%s[%d]: %w", xls.Name, xls.row, err)
	}
	return nil
}

func mergeRef(col, row int, size Size) (string, error) {
	from, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	to, err := excelize.CoordinatesToCellName(col+max(size.Cols, 1)-1, row+max(size.Rows, 1)-1)
	if err != nil {
		return "", err
	}
	return from + ":" + to, nil
}

// WriteTable drains the rows of the table into the sheet, and returns the number of rows read.
// Only the current row is referenced while writing.
func (xls *Sheet) WriteTable(t *Table) (int, error) {
	e := t.Rows()
	for e.Next() {
		if err := xls.WriteRow(e.Row()); err != nil {
			return e.ItemsRead(), err
		}
	}
	return e.ItemsRead(), nil
}
