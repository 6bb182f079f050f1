// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"io"
	"strconv"

	"github.com/valyala/quicktemplate"
)

const (
	nsMain        = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContent     = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDocument = nsRel + "/officeDocument"
	relWorksheet      = nsRel + "/worksheet"
	relStyles         = nsRel + "/styles"
	relDrawing        = nsRel + "/drawing"
	relChart          = nsRel + "/chart"

	ctWorkbook  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctDrawing   = "application/vnd.openxmlformats-officedocument.drawing+xml"
	ctChart     = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// rel is one relationship of a part.
type rel struct {
	ID, Type, Target string
}

func relID(i int) string { return "rId" + strconv.Itoa(i) }

func sheetPath(i int) string   { return "xl/worksheets/sheet" + strconv.Itoa(i) + ".xml" }
func drawingPath(i int) string { return "xl/drawings/drawing" + strconv.Itoa(i) + ".xml" }
func chartPath(i int) string   { return "xl/charts/chart" + strconv.Itoa(i) + ".xml" }

// relsPath returns the path of the relationships part belonging to the part at p.
func relsPath(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i+1] + "_rels/" + p[i+1:] + ".rels"
		}
	}
	return "_rels/" + p + ".rels"
}

func writeRels(w io.Writer, rels []rel) error {
	return render(w, func(n, e *quicktemplate.QWriter) {
		n.S(`<Relationships xmlns="` + nsPackageRels + `">`)
		for _, r := range rels {
			n.S(`<Relationship Id="`)
			e.S(r.ID)
			n.S(`" Type="`)
			e.S(r.Type)
			n.S(`" Target="`)
			e.S(r.Target)
			n.S(`"/>`)
		}
		n.S(`</Relationships>`)
	})
}

// writeWorkbook writes the workbook part; sheet i has the relationship id rId(i+1).
func writeWorkbook(w io.Writer, names []string) error {
	return render(w, func(n, e *quicktemplate.QWriter) {
		n.S(`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">`)
		n.S(`<bookViews><workbookView activeTab="0"/></bookViews><sheets>`)
		for i, name := range names {
			n.S(`<sheet name="`)
			e.S(name)
			n.S(`" sheetId="`)
			n.D(i + 1)
			n.S(`" r:id="`)
			n.S(relID(i + 1))
			n.S(`"/>`)
		}
		n.S(`</sheets></workbook>`)
	})
}

func writeContentTypes(w io.Writer, sheets, drawings, charts int) error {
	return render(w, func(n, e *quicktemplate.QWriter) {
		n.S(`<Types xmlns="` + nsContent + `">`)
		n.S(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
		n.S(`<Default Extension="xml" ContentType="application/xml"/>`)
		override := func(part, typ string) {
			n.S(`<Override PartName="/`)
			e.S(part)
			n.S(`" ContentType="`)
			n.S(typ)
			n.S(`"/>`)
		}
		override("xl/workbook.xml", ctWorkbook)
		override("xl/styles.xml", ctStyles)
		for i := 1; i <= sheets; i++ {
			override(sheetPath(i), ctWorksheet)
		}
		for i := 1; i <= drawings; i++ {
			override(drawingPath(i), ctDrawing)
		}
		for i := 1; i <= charts; i++ {
			override(chartPath(i), ctChart)
		}
		n.S(`</Types>`)
	})
}

// render writes the XML header and the body, returning the first write error.
func render(w io.Writer, body func(n, e *quicktemplate.QWriter)) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	defer quicktemplate.ReleaseWriter(qw)
	qw.N().S(xmlHeader)
	body(qw.N(), qw.E())
	return ew.err
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
