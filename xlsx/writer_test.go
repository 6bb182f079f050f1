// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/chart"
	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
)

func openBook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	xl, err := excelize.OpenReader(bytes.NewReader(b), excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { xl.Close() })
	return xl
}

func readPart(t *testing.T, b []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	f, err := zr.Open(name)
	if err != nil {
		t.Fatalf("%s: %+v", name, err)
	}
	defer f.Close()
	p, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	return string(p)
}

func cellValue(t *testing.T, xl *excelize.File, sheet, ref string) string {
	t.Helper()
	s, err := xl.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("%s!%s: %+v", sheet, ref, err)
	}
	return s
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	sh, err := w.AddSheet("Data", []xlstream.Column{
		{Name: "Name", Header: xlstream.Style{FontBold: true}, Width: 20},
		{Name: "Amount", Column: xlstream.Style{Format: "0.00"}},
		{Name: "Day"},
	})
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err = sh.AppendRow("first", 1.5, day); err != nil {
		t.Fatal(err)
	}
	if err = sh.AppendRow(nil, xlstream.Number("2"), "2020-01-02"); err != nil {
		t.Fatal(err)
	}
	merged := NewCell("wide", String)
	merged.Merge = Size{Cols: 3, Rows: 1}
	if err = sh.WriteRow(NewRow(merged)); err != nil {
		t.Fatal(err)
	}

	rows := [][]any{{"x", 1}, {"y", 2}}
	n, err := w.WriteTable(NewTable("Table", nil, RequestFunc(func(req *RowRequest) {
		if len(rows) == 0 {
			req.Finished = true
			return
		}
		req.Row = NewRow(NewCell(rows[0][0], String), NewCell(rows[0][1], Number))
		rows = rows[1:]
	})))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("table: got %d rows", n)
	}
	if err = sh.AppendRow("late"); !errors.Is(err, ErrSheetClose) {
		t.Errorf("append to closed sheet: got %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	xl := openBook(t, buf.Bytes())
	if got := xl.GetSheetList(); !slices.Equal(got, []string{"Data", "Table"}) {
		t.Errorf("sheets: %q", got)
	}
	for ref, want := range map[string]string{
		"A1": "Name", "B1": "Amount", "C1": "Day",
		"A2": "first", "B2": "1.5", "C2": "43831",
		"A3": "", "B3": "2", "C3": "2020-01-02",
		"A4": "wide",
	} {
		if got := cellValue(t, xl, "Data", ref); got != want {
			t.Errorf("Data!%s: got %q, wanted %q", ref, got, want)
		}
	}
	for ref, want := range map[string]string{"A1": "x", "B1": "1", "A2": "y", "B2": "2"} {
		if got := cellValue(t, xl, "Table", ref); got != want {
			t.Errorf("Table!%s: got %q, wanted %q", ref, got, want)
		}
	}
	mc, err := xl.GetMergeCells("Data")
	if err != nil {
		t.Fatal(err)
	}
	if len(mc) != 1 || mc[0].GetStartAxis() != "A4" || mc[0].GetEndAxis() != "C4" {
		t.Errorf("merges: %v", mc)
	}
	if s, err := xl.GetCellStyle("Data", "A1"); err != nil || s == 0 {
		t.Errorf("bold header is unstyled: %d %v", s, err)
	}
	if s, err := xl.GetCellStyle("Data", "A2"); err != nil || s != 0 {
		t.Errorf("plain cell is styled: %d %v", s, err)
	}
	// column style applies to the converted values
	amount, _ := xl.GetCellStyle("Data", "B2")
	if s, _ := xl.GetCellStyle("Data", "B3"); s == 0 || s != amount {
		t.Errorf("column style: %d, %d", amount, s)
	}
	if width, err := xl.GetColWidth("Data", "A"); err != nil || width != 20 {
		t.Errorf("width: %v %v", width, err)
	}
	if styles := readPart(t, buf.Bytes(), "xl/styles.xml"); !strings.Contains(styles, `formatCode="0.00"`) {
		t.Errorf("styles: %s", styles)
	}
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Close(); err != nil {
		t.Fatal(err)
	}
	xl := openBook(t, buf.Bytes())
	if got := xl.GetSheetList(); !slices.Equal(got, []string{"Sheet1"}) {
		t.Errorf("sheets: %q", got)
	}
	rows, err := xl.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("rows: %q", rows)
	}
	if s := readPart(t, buf.Bytes(), "xl/worksheets/sheet1.xml"); !strings.Contains(s, "<sheetData></sheetData>") {
		t.Errorf("sheet: %s", s)
	}

	// zero rows from a table
	buf.Reset()
	w := NewWriter(&buf)
	n, err := w.WriteTable(NewTable("Empty", []xlstream.Column{{Width: 10}}, RequestFunc(func(req *RowRequest) { req.Finished = true })))
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := openBook(t, buf.Bytes()).GetSheetList(); !slices.Equal(got, []string{"Empty"}) {
		t.Errorf("sheets: %q", got)
	}
}

func TestSheetNames(t *testing.T) {
	w := NewWriter(io.Discard)
	for _, name := range []string{"", "a/b", "a[1]", "x?", strings.Repeat("n", 32), strings.Repeat("\U0001F600", 16), "'quoted'"} {
		if _, err := w.AddSheet(name, nil); !errors.Is(err, xlstream.ErrSheetName) {
			t.Errorf("%q: got %v", name, err)
		}
	}
	if _, err := w.AddSheet(strings.Repeat("ő", 31), nil); err != nil {
		t.Errorf("31 characters: %+v", err)
	}
	if _, err := w.AddSheet(strings.Repeat("\U0001F600", 15), nil); err != nil {
		t.Errorf("30 code units: %+v", err)
	}
	if _, err := w.AddSheet("Data", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddSheet("data", nil); !errors.Is(err, xlstream.ErrSheetName) {
		t.Errorf("duplicate: got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddSheet("After", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("after close: got %v", err)
	}
}

func TestTooManyRows(t *testing.T) {
	w := NewWriter(io.Discard)
	sh, err := w.AddSheet("Data", nil)
	if err != nil {
		t.Fatal(err)
	}
	sh.row = MaxRowCount - 1
	if err = sh.AppendRow("last"); err != nil {
		t.Fatal(err)
	}
	if err = sh.AppendRow("over"); !errors.Is(err, xlstream.ErrTooManyRows) {
		t.Errorf("got %v", err)
	}
}

func TestSkippedCellLogged(t *testing.T) {
	var logBuf bytes.Buffer
	w := NewWriter(io.Discard, WithLogger(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	sh, err := w.AddSheet("Data", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = sh.WriteRow(NewRow(NewCell("abc", Number), NewCell("ok", String))); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	if s := logBuf.String(); !strings.Contains(s, "skip cell") || !strings.Contains(s, "value=abc") {
		t.Errorf("log: %s", s)
	}
}

func TestCharts(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	sh, err := w.AddSheet("Data", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = sh.AppendRow("a", 1); err != nil {
		t.Fatal(err)
	}
	line := chart.Data{Series: []chart.Series{{Title: "s", Points: []chart.Point{{Argument: "2024-01-01", Value: "1"}}}}}
	if err = sh.AddChart(chart.NewSpec(chart.Line), line, chart.Location{Column: 3}); err != nil {
		t.Fatal(err)
	}
	gantt := chart.Data{Tasks: []chart.Task{{Name: "t", Start: time.Hour, End: 2 * time.Hour}}}
	if err = sh.AddChart(chart.NewSpec(chart.Gantt), gantt, chart.Location{Column: 3, Row: 20}); err != nil {
		t.Fatal(err)
	}
	if err = sh.AddChart(chart.NewSpec(chart.Pie), chart.Data{}, chart.Location{}); !errors.Is(err, chart.ErrNoData) {
		t.Errorf("no data: got %v", err)
	}
	other, err := w.AddSheet("Other", nil)
	if err != nil {
		t.Fatal(err)
	}
	pie := chart.Data{Series: []chart.Series{{Title: "p", Points: []chart.Point{{Argument: "x", Value: "1"}}}}}
	if err = other.AddChart(chart.NewSpec(chart.Pie), pie, chart.Location{}); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	for name, want := range map[string][]string{
		"xl/worksheets/sheet1.xml":            {`<drawing r:id="rId1"></drawing>`},
		"xl/worksheets/_rels/sheet1.xml.rels": {`Target="../drawings/drawing1.xml"`},
		"xl/worksheets/_rels/sheet2.xml.rels": {`Target="../drawings/drawing2.xml"`},
		"xl/drawings/drawing1.xml":            {`r:id="rId1"`, `r:id="rId2"`, "<xdr:row>20</xdr:row>"},
		"xl/drawings/_rels/drawing1.xml.rels": {`Target="../charts/chart1.xml"`, `Target="../charts/chart2.xml"`},
		"xl/drawings/_rels/drawing2.xml.rels": {`Id="rId1"`, `Target="../charts/chart3.xml"`},
		"xl/charts/chart1.xml":                {"<c:lineChart>", "<c:dateAx>"},
		"xl/charts/chart2.xml":                {"<c:barChart>"},
		"xl/charts/chart3.xml":                {"<c:pieChart>"},
		"[Content_Types].xml":                 {"/xl/charts/chart3.xml", "/xl/drawings/drawing2.xml", "/xl/worksheets/sheet2.xml"},
	} {
		part := readPart(t, b, name)
		for _, s := range want {
			if !strings.Contains(part, s) {
				t.Errorf("%s: no %q in\n%s", name, s, part)
			}
		}
	}
	openBook(t, b)
}

func TestChartConfig(t *testing.T) {
	w := NewWriter(io.Discard, WithChartConfig(chart.Config{Palette: []string{"000000"}, CategoryAxisID: 1, ValueAxisID: 1}))
	sh, err := w.AddSheet("Data", nil)
	if err != nil {
		t.Fatal(err)
	}
	pie := chart.Data{Series: []chart.Series{{Title: "p", Points: []chart.Point{{Argument: "x", Value: "1"}}}}}
	if err = sh.AddChart(chart.NewSpec(chart.Pie), pie, chart.Location{}); !errors.Is(err, chart.ErrAxisIDs) {
		t.Errorf("got %v", err)
	}
}

func TestHeaderStyleWithoutName(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	sh, err := w.AddSheet("Data", []xlstream.Column{
		{Header: xlstream.Style{FontBold: true}},
		{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = sh.AppendRow("x", "y"); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	xl := openBook(t, buf.Bytes())
	if got := cellValue(t, xl, "Data", "A2"); got != "x" {
		t.Errorf("A2: got %q, wanted x", got)
	}
	idx, err := xl.GetCellStyle("Data", "A1")
	if err != nil || idx == 0 {
		t.Errorf("A1: got style %d (%v), wanted the bold header style", idx, err)
	}
	if part := readPart(t, buf.Bytes(), "xl/worksheets/sheet1.xml"); !strings.Contains(part, `<c r="A1" s="`) {
		t.Errorf("no styled header cell in %s", part)
	}
	if idx, err = xl.GetCellStyle("Data", "B1"); err != nil || idx != 0 {
		t.Errorf("B1: got style %d (%v), wanted 0", idx, err)
	}
}
