// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package styles

import (
	"io"
	"strconv"

	"github.com/valyala/quicktemplate"
)

const (
	// FirstCustomFormatID is the first number format id free for custom formats.
	FirstCustomFormatID = 164
	// DateTimeFormatID is the built-in "m/d/yyyy h:mm" format used for dates without a custom format.
	DateTimeFormatID = 22

	defaultFontName = "Calibri"
	defaultFontSize = 11.0
)

type fontKey struct {
	Font
	Color Color
}

// table is the second-level deduplication of the xf components.
type table struct {
	formats []string
	fonts   []fontKey
	fills   []Color
	xfs     []xf
}

type xf struct {
	NumFmt, Font, Fill int
	Descriptor
}

func dedup[T comparable](m map[T]int, list *[]T, k T, base int) int {
	if i, ok := m[k]; ok {
		return i
	}
	i := base + len(*list)
	*list = append(*list, k)
	m[k] = i
	return i
}

func (c *Cache) table() table {
	var t table
	formats := make(map[string]int)
	fonts := map[fontKey]int{{}: 0}
	fills := map[Color]int{"": 0}
	t.fonts = []fontKey{{}}
	for _, d := range c.Export()[1:] {
		x := xf{Descriptor: d}
		if d.Format != "" {
			x.NumFmt = dedup(formats, &t.formats, d.Format, FirstCustomFormatID)
		} else if d.IsDate {
			x.NumFmt = DateTimeFormatID
		}
		x.Font = dedup(fonts, &t.fonts, fontKey{Font: d.Font, Color: d.Foreground}, 0)
		if d.Background != "" {
			// 0 and 1 are the mandatory "none" and "gray125" fills
			x.Fill = dedup(fills, &t.fills, d.Background, 2)
		}
		t.xfs = append(t.xfs, x)
	}
	return t
}

// WriteXML writes the styles part for all the interned descriptors.
// The cellXfs entry i belongs to the descriptor with index i.
func (c *Cache) WriteXML(w io.Writer) error {
	t := c.table()
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	defer quicktemplate.ReleaseWriter(qw)
	n, e := qw.N(), qw.E()

	n.S(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	n.S(`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	if len(t.formats) != 0 {
		n.S(`<numFmts count="`)
		n.D(len(t.formats))
		n.S(`">`)
		for i, f := range t.formats {
			n.S(`<numFmt numFmtId="`)
			n.D(FirstCustomFormatID + i)
			n.S(`" formatCode="`)
			e.S(f)
			n.S(`"/>`)
		}
		n.S(`</numFmts>`)
	}

	n.S(`<fonts count="`)
	n.D(len(t.fonts))
	n.S(`">`)
	for _, f := range t.fonts {
		n.S(`<font>`)
		if f.Bold {
			n.S(`<b/>`)
		}
		if f.Italic {
			n.S(`<i/>`)
		}
		if f.Strike {
			n.S(`<strike/>`)
		}
		if f.Underline {
			n.S(`<u/>`)
		}
		size := f.Size
		if size <= 0 {
			size = defaultFontSize
		}
		n.S(`<sz val="`)
		n.S(strconv.FormatFloat(size, 'f', -1, 64))
		n.S(`"/>`)
		if f.Color != "" {
			n.S(`<color rgb="`)
			e.S(f.Color.ARGB())
			n.S(`"/>`)
		}
		name := f.Name
		if name == "" {
			name = defaultFontName
		}
		n.S(`<name val="`)
		e.S(name)
		n.S(`"/><family val="2"/></font>`)
	}
	n.S(`</fonts>`)

	n.S(`<fills count="`)
	n.D(2 + len(t.fills))
	n.S(`"><fill><patternFill patternType="none"/></fill><fill><patternFill patternType="gray125"/></fill>`)
	for _, bg := range t.fills {
		n.S(`<fill><patternFill patternType="solid"><fgColor rgb="`)
		e.S(bg.ARGB())
		n.S(`"/><bgColor indexed="64"/></patternFill></fill>`)
	}
	n.S(`</fills>`)

	n.S(`<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>`)
	n.S(`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>`)

	n.S(`<cellXfs count="`)
	n.D(1 + len(t.xfs))
	n.S(`"><xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>`)
	for _, x := range t.xfs {
		n.S(`<xf numFmtId="`)
		n.D(x.NumFmt)
		n.S(`" fontId="`)
		n.D(x.Font)
		n.S(`" fillId="`)
		n.D(x.Fill)
		n.S(`" borderId="0" xfId="0"`)
		if x.NumFmt != 0 {
			n.S(` applyNumberFormat="1"`)
		}
		if x.Font != 0 {
			n.S(` applyFont="1"`)
		}
		if x.Fill != 0 {
			n.S(` applyFill="1"`)
		}
		if !x.hasAlignment() {
			n.S(`/>`)
			continue
		}
		n.S(` applyAlignment="1"><alignment`)
		if x.Horizontal != 0 {
			n.S(` horizontal="`)
			n.S(x.Horizontal.String())
			n.S(`"`)
		}
		if x.Vertical != 0 {
			n.S(` vertical="`)
			n.S(x.Vertical.String())
			n.S(`"`)
		}
		if x.Indent > 0 {
			n.S(` indent="`)
			n.D(x.Indent)
			n.S(`"`)
		}
		if x.WrapText {
			n.S(` wrapText="1"`)
		}
		n.S(`/></xf>`)
	}
	n.S(`</cellXfs>`)

	n.S(`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>`)
	n.S(`<dxfs count="0"/><tableStyles count="0"/></styleSheet>`)
	return ew.err
}

func (x xf) hasAlignment() bool {
	return x.Horizontal != 0 || x.Vertical != 0 || x.Indent > 0 || x.WrapText
}

// errWriter remembers the first write error, as QWriter swallows them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}
