// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package chart

import (
	"strconv"
)

const (
	// Columns is the number of columns a placed chart spans.
	Columns = 20
	// Rows is the number of rows a placed chart spans.
	Rows = 16

	fromColOff, fromRowOff = 581025, 114300
	toColOff, toRowOff     = 276225, 0
)

// Location is the top-left cell of a chart, zero based.
type Location struct {
	Column int `yaml:"column"`
	Row    int `yaml:"row"`
}

// NewDrawing returns an empty xdr:wsDr drawing part element.
func NewDrawing() *Node {
	return NewNode("xdr:wsDr", attr("xmlns:xdr", nsSpreadsheet), attr("xmlns:a", nsDrawing))
}

// SetLocation appends a two-cell anchor to the drawing, spanning Columns x Rows cells
// from loc, referencing the chart part by its relationship id.
func (b *Builder) SetLocation(drawing *Node, relID string, loc Location) *Node {
	n := len(drawing.ChildrenNamed("xdr:twoCellAnchor"))
	anchor := drawing.Add("xdr:twoCellAnchor")
	marker(anchor.Add("xdr:from"), loc.Column, fromColOff, loc.Row, fromRowOff)
	marker(anchor.Add("xdr:to"), loc.Column+Columns-1, toColOff, loc.Row+Rows-1, toRowOff)

	frame := anchor.Add("xdr:graphicFrame", attr("macro", ""))
	nv := frame.Add("xdr:nvGraphicFramePr")
	nv.Add("xdr:cNvPr", attr("id", n+2), attr("name", "Chart "+strconv.Itoa(n+1)))
	nv.Add("xdr:cNvGraphicFramePr")
	xfrm := frame.Add("xdr:xfrm")
	xfrm.Add("a:off", attr("x", 0), attr("y", 0))
	xfrm.Add("a:ext", attr("cx", 0), attr("cy", 0))
	frame.Add("a:graphic").Add("a:graphicData", attr("uri", nsChart)).
		Add("c:chart", attr("xmlns:c", nsChart), attr("xmlns:r", nsRel), attr("r:id", relID))
	anchor.Add("xdr:clientData")
	return anchor
}

func marker(m *Node, col, colOff, row, rowOff int) {
	m.Leaf("xdr:col", strconv.Itoa(col))
	m.Leaf("xdr:colOff", strconv.Itoa(colOff))
	m.Leaf("xdr:row", strconv.Itoa(row))
	m.Leaf("xdr:rowOff", strconv.Itoa(rowOff))
}
