// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xmlw is a small sequential XML writer: start element, attributes,
// text, end element - in document order, without buffering whole elements.
//
// Names are written verbatim, so prefixed names such as "c:chart" or
// "xml:space" must be declared by the caller with an "xmlns:c" attribute.
package xmlw

import (
	"encoding/xml"
	"errors"
	"io"
)

// Declaration is the standalone XML declaration of every package part.
const Declaration = `version="1.0" encoding="UTF-8" standalone="yes"`

// ErrUnbalanced is returned when End is called without an open element.
var ErrUnbalanced = errors.New("xmlw: end without start")

// Writer writes XML tokens. The first error is sticky: later calls are no-ops.
//
// Writer is not safe for concurrent use.
type Writer struct {
	enc   *xml.Encoder
	stack []xml.Name
	err   error
}

// New returns a Writer writing to w. Call Flush when done.
func New(w io.Writer) *Writer {
	return &Writer{enc: xml.NewEncoder(w)}
}

// Attr is a shortcut for an unprefixed xml.Attr.
func Attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Header writes the XML declaration. It must be the first call.
func (w *Writer) Header() {
	w.token(xml.ProcInst{Target: "xml", Inst: []byte(Declaration)})
}

// Start opens an element.
func (w *Writer) Start(name string, attrs ...xml.Attr) {
	n := xml.Name{Local: name}
	w.token(xml.StartElement{Name: n, Attr: attrs})
	if w.err == nil {
		w.stack = append(w.stack, n)
	}
}

// Text writes escaped character data.
func (w *Writer) Text(s string) {
	if s == "" {
		return
	}
	w.token(xml.CharData(s))
}

// End closes the innermost open element.
func (w *Writer) End() {
	if w.err != nil {
		return
	}
	if len(w.stack) == 0 {
		w.err = ErrUnbalanced
		return
	}
	n := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.token(xml.EndElement{Name: n})
}

// Empty writes an element without content.
func (w *Writer) Empty(name string, attrs ...xml.Attr) {
	w.Start(name, attrs...)
	w.End()
}

// Leaf writes an element with text content only.
func (w *Writer) Leaf(name, text string, attrs ...xml.Attr) {
	w.Start(name, attrs...)
	w.Text(text)
	w.End()
}

// Depth returns the number of open elements.
func (w *Writer) Depth() int { return len(w.stack) }

// Flush writes the buffered tokens to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.enc.Flush()
	return w.err
}

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

func (w *Writer) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}
