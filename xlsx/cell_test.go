// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"database/sql"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/styles"
	"github.com/UNO-SOFT/xlstream/xmlw"
	"google.golang.org/genproto/googleapis/type/date"
)

func encodeCell(t *testing.T, c *Cell, col, row int, sc *styles.Cache) string {
	t.Helper()
	var buf strings.Builder
	w := xmlw.New(&buf)
	c.Encode(w, col, row, sc)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestColumnLetter(t *testing.T) {
	for col, want := range map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 702: "ZZ", 703: "AAA"} {
		if got, err := ColumnLetter(col); err != nil {
			t.Errorf("%d: %+v", col, err)
		} else if got != want {
			t.Errorf("%d: got %q, wanted %q", col, got, want)
		}
	}
	if _, err := ColumnLetter(0); err == nil {
		t.Error("0: wanted error")
	}
}

func TestEncode(t *testing.T) {
	for name, tc := range map[string]struct {
		Cell     *Cell
		Col, Row int
		Want     string
	}{
		"nil":    {NewCell(nil, String), 1, 1, ""},
		"string": {NewCell("a < b", String), 1, 1, `<c r="A1" t="inlineStr"><is><t xml:space="preserve">a &lt; b</t></is></c>`},
		"ref":    {NewCell("x", String), 27, 3, `<c r="AA3" t="inlineStr"><is><t xml:space="preserve">x</t></is></c>`},
		"zz":     {NewCell("x", String), 702, 1, `<c r="ZZ1" t="inlineStr"><is><t xml:space="preserve">x</t></is></c>`},
		"number": {NewCell(" 3.5 ", Number), 2, 2, `<c r="B2" t="n"><v>3.5</v></c>`},
		"int":    {NewCell(42, Number), 1, 1, `<c r="A1" t="n"><v>42</v></c>`},
		"numstr": {NewCell(xlstream.Number("-1e3"), Number), 1, 1, `<c r="A1" t="n"><v>-1000</v></c>`},
		"notnum": {NewCell("abc", Number), 1, 1, ""},
		"nan":    {NewCell(math.NaN(), Number), 1, 1, ""},
		"inf":    {NewCell(math.Inf(1), Number), 1, 1, ""},
		"other":  {NewCell(true, Other), 3, 1, `<c r="C1" t="str"><v>true</v></c>`},
		"date":   {NewCell("2020-01-01", DateTime), 1, 1, `<c r="A1" s="1"><v>43831</v></c>`},
		"time": {NewCell(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), DateTime), 1, 1,
			`<c r="A1" s="1"><v>43831.5</v></c>`},
		"gdate":   {NewCell(&date.Date{Year: 1900, Month: 3, Day: 1}, DateTime), 1, 1, `<c r="A1" s="1"><v>61</v></c>`},
		"usdate":  {NewCell("1/2/2020", DateTime), 1, 1, `<c r="A1" s="1"><v>43832</v></c>`},
		"isodate": {NewCell("2020-1-2", DateTime), 1, 1, `<c r="A1" s="1"><v>43832</v></c>`},
		"dotdate": {NewCell("3.1.2020", DateTime), 1, 1, `<c r="A1" s="1"><v>43833</v></c>`},
		"notdate": {NewCell("yesterday", DateTime), 1, 1, ""},
		"zerotm":  {NewCell(time.Time{}, DateTime), 1, 1, ""},
		"badref":  {NewCell("x", String), 0, 1, ""},
	} {
		sc := styles.NewCache()
		if got := encodeCell(t, tc.Cell, tc.Col, tc.Row, sc); got != tc.Want {
			t.Errorf("%s: got\n%s\nwanted\n%s", name, got, tc.Want)
		}
		if tc.Want == "" && sc.Len() != 0 {
			t.Errorf("%s: skipped cell allocated %d styles", name, sc.Len())
		}
	}
}

func TestEncodeStyled(t *testing.T) {
	sc := styles.NewCache()
	c := NewCell("x", String)
	c.Font = &styles.Font{Bold: true}
	c.Alignment = styles.HAlignCenter
	if got, want := encodeCell(t, c, 1, 1, sc), `<c r="A1" s="1" t="inlineStr">`; !strings.HasPrefix(got, want) {
		t.Errorf("got %s, wanted %s...", got, want)
	}
	d := NewCell("y", String)
	d.Font = &styles.Font{Bold: true}
	d.Alignment = styles.HAlignCenter
	if got, want := encodeCell(t, d, 1, 2, sc), `<c r="A2" s="1" t="inlineStr">`; !strings.HasPrefix(got, want) {
		t.Errorf("same style: got %s, wanted %s...", got, want)
	}
	e := NewCell(1, Number)
	e.Format = "0.00"
	if got, want := encodeCell(t, e, 1, 3, sc), `<c r="A3" s="2" t="n"><v>1</v></c>`; got != want {
		t.Errorf("format: got %s, wanted %s", got, want)
	}
	if sc.Len() != 2 {
		t.Errorf("got %d styles, wanted 2", sc.Len())
	}
}

func TestWrapText(t *testing.T) {
	for name, tc := range map[string]struct {
		Value any
		Want  bool
	}{
		"short":     {"abc", false},
		"200":       {strings.Repeat("á", 200), false},
		"201":       {strings.Repeat("á", 201), true},
		"astral100": {strings.Repeat("\U0001F600", 100), false},
		"astral101": {strings.Repeat("\U0001F600", 101), true},
		"newline":   {"a\nb", true},
		"number":    {12345, false},
	} {
		c := NewCell(tc.Value, String)
		if got := c.WrapText(); got != tc.Want {
			t.Errorf("%s: got %t, wanted %t", name, got, tc.Want)
		}
		if got := c.Descriptor().WrapText; got != tc.Want {
			t.Errorf("%s: descriptor got %t, wanted %t", name, got, tc.Want)
		}
	}
	c := NewCell("a\nb", String)
	c.SetValue("ab")
	if c.WrapText() {
		t.Error("SetValue kept wrap")
	}
	if got := encodeCell(t, NewCell("a\nb", String), 1, 1, styles.NewCache()); !strings.Contains(got, ` s="1"`) {
		t.Errorf("wrapped cell is unstyled: %s", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("ő", 40000)
	got := encodeCell(t, NewCell(long, String), 1, 1, styles.NewCache())
	i := strings.Index(got, `preserve">`) + len(`preserve">`)
	j := strings.Index(got, "</t>")
	if n := utf8.RuneCountInString(got[i:j]); n != MaxCellLength {
		t.Errorf("got %d characters, wanted %d", n, MaxCellLength)
	}
	if s := truncate("abc", 5); s != "abc" {
		t.Errorf("got %q", s)
	}
	if s := truncate("árvíz", 3); s != "árv" {
		t.Errorf("got %q", s)
	}

	emoji := strings.Repeat("\U0001F600", 40000)
	got = encodeCell(t, NewCell(emoji, String), 1, 1, styles.NewCache())
	i = strings.Index(got, `preserve">`) + len(`preserve">`)
	j = strings.Index(got, "</t>")
	text := got[i:j]
	if !utf8.ValidString(text) {
		t.Error("truncation split a rune")
	}
	if n := utf16Len(text); n != MaxCellLength-1 {
		t.Errorf("got %d code units, wanted %d", n, MaxCellLength-1)
	}
	if s := truncate("a\U0001F600b", 2); s != "a" {
		t.Errorf("got %q", s)
	}
	if s := truncate("a\U0001F600b", 3); s != "a\U0001F600" {
		t.Errorf("got %q", s)
	}
}

func TestCellOf(t *testing.T) {
	for name, tc := range map[string]struct {
		Value any
		Type  DataType
		Nil   bool
	}{
		"nil":      {nil, 0, true},
		"zerotime": {time.Time{}, 0, true},
		"time":     {time.Now(), DateTime, false},
		"float":    {1.5, Number, false},
		"uint8":    {uint8(1), Number, false},
		"number":   {xlstream.Number("1"), Number, false},
		"bool":     {false, Other, false},
		"string":   {"s", String, false},
		"bytes":    {[]byte("s"), String, false},
		"stringer": {time.Second, String, false},
		"invalid":  {sql.NullString{}, 0, true},
		"valid":    {sql.NullString{Valid: true, String: "x"}, String, false},
		"nullint":  {sql.NullInt64{Valid: true, Int64: 2}, Number, false},
	} {
		c := cellOf(tc.Value)
		if tc.Nil {
			if c != nil {
				t.Errorf("%s: got %+v, wanted nil", name, c)
			}
			continue
		}
		if c == nil {
			t.Errorf("%s: got nil", name)
		} else if c.Type != tc.Type {
			t.Errorf("%s: got %s, wanted %s", name, c.Type, tc.Type)
		}
	}
}
