// Copyright 2020, Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlstream

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncName is the default input encoding, from the charset part of $LANG.
var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	} else {
		EncName = ""
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the named encoding, nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

// CSVReader reads records, and closes the underlying file.
type CSVReader struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens fn ("" or "-" means stdin) for reading CSV records,
// decoding it from encName.
//
// The separator is the most frequent of comma, semicolon, tab and pipe
// in the first line; comma if there is none.
func OpenCsv(fn, encName string) (CSVReader, error) {
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return CSVReader{}, err
		}
	}
	cr, err := NewCSVReader(fh, encName)
	if err != nil {
		fh.Close()
	}
	return cr, err
}

// NewCSVReader is OpenCsv for an already opened stream.
func NewCSVReader(r io.ReadCloser, encName string) (CSVReader, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return CSVReader{}, err
		}
	}
	var rd io.Reader = r
	if enc != nil {
		rd = enc.NewDecoder().Reader(r)
	}
	br := bufio.NewReaderSize(rd, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		return CSVReader{}, err
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.Comma = sniffSeparator(string(b))
	return CSVReader{Reader: cr, Closer: r}, nil
}

// separators are the recognized field separators, in order of preference.
const separators = ",;\t|"

// sniffSeparator returns the separator occurring most often in the first line of s.
func sniffSeparator(s string) rune {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	best, most := ',', 0
	for _, sep := range separators {
		if n := strings.Count(s, string(sep)); n > most {
			best, most = sep, n
		}
	}
	return best
}
