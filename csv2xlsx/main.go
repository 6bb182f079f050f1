// Copyright 2021, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command csv2xlsx converts CSV files to the sheets of an xlsx workbook,
// optionally adding charts defined in a YAML file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlstream"
	"github.com/UNO-SOFT/xlstream/chart"
	"github.com/UNO-SOFT/xlstream/xlsx"
	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", xlstream.EncName, "csv charset name")
	flagTypes := fs.String("types", "", "comma separated column types: s[tring], n[umber], d[ate], o[ther]")
	flagNoHeader := fs.Bool("no-header", false, "the first row is data, not header")
	flagCharts := fs.String("charts", "", "YAML file of chart definitions")

	app := ffcli.Command{Name: "csv2xlsx", FlagSet: fs,
		ShortUsage: "csv2xlsx [flags] <output.xlsx> [sheet:]<input.csv>...",
		Options:    []ff.Option{ff.WithEnvVarPrefix("CSV2XLSX")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return flag.ErrHelp
			}
			types, err := parseTypes(*flagTypes)
			if err != nil {
				return err
			}
			var defs []chart.Definition
			if *flagCharts != "" {
				fh, err := os.Open(*flagCharts)
				if err != nil {
					return err
				}
				defs, err = chart.LoadDefinitions(fh)
				fh.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", *flagCharts, err)
				}
			}

			fn := args[0]
			fh := os.Stdout
			if !(fn == "" || fn == "-") {
				if fh, err = os.Create(fn); err != nil {
					return err
				}
			}
			defer fh.Close()
			w := xlsx.NewWriter(fh, xlsx.WithLogger(logger))
			inputs := args[1:]
			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			for i, fn := range inputs {
				sheetName := fmt.Sprintf("Sheet%d", i+1)
				if i := strings.IndexByte(fn, ':'); i >= 0 {
					sheetName, fn = fn[:i], fn[i+1:]
				} else if fn != "" && fn != "-" {
					sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
				}
				var sheetDefs []chart.Definition
				for _, d := range defs {
					if d.Sheet == sheetName || (d.Sheet == "" && i == 0) {
						sheetDefs = append(sheetDefs, d)
					}
				}
				if err := copyFile(ctx, w, sheetName, fn, *flagEnc, copyOptions{
					Types: types, NoHeader: *flagNoHeader, Charts: sheetDefs,
				}); err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			return fh.Close()
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

// parseTypes parses the comma separated list of column types.
func parseTypes(s string) ([]xlsx.DataType, error) {
	if s == "" {
		return nil, nil
	}
	var types []xlsx.DataType
	for _, t := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "s", "string":
			types = append(types, xlsx.String)
		case "n", "number":
			types = append(types, xlsx.Number)
		case "d", "date", "datetime":
			types = append(types, xlsx.DateTime)
		case "o", "other":
			types = append(types, xlsx.Other)
		default:
			return types, fmt.Errorf("unknown column type %q", t)
		}
	}
	return types, nil
}

type copyOptions struct {
	Types    []xlsx.DataType
	NoHeader bool
	Charts   []chart.Definition
}

// recordReader reads CSV records.
type recordReader interface {
	Read() ([]string, error)
}

func copyFile(ctx context.Context, w *xlsx.Writer, sheetName, fn, encName string, opts copyOptions) error {
	cr, err := xlstream.OpenCsv(fn, encName)
	if err != nil {
		return err
	}
	defer cr.Close()

	var cols []xlstream.Column
	var first []string
	row, err := cr.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if opts.NoHeader {
		first = append(first, row...)
		cols = make([]xlstream.Column, len(row))
	} else {
		cols = make([]xlstream.Column, len(row))
		for i, r := range row {
			cols[i].Name = r
			cols[i].Header.FontBold = true
			cols[i].Width = float64(max(10, utf8.RuneCountInString(r)+2))
		}
	}
	sheet, err := w.AddSheet(sheetName, cols)
	if err != nil {
		return err
	}
	n, err := sheet.WriteTable(xlsx.NewTable(sheetName, cols, csvSource(ctx, cr.Reader, first, opts.Types)))
	logger.Debug("copied", "sheet", sheetName, "rows", n, "error", err)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	for _, d := range opts.Charts {
		if err = sheet.AddChart(d.Spec, d.Data, d.Location); err != nil {
			return err
		}
	}
	return sheet.Close()
}

// csvSource returns the records of r as rows, typed by types (String by default),
// starting with first if it is not empty.
func csvSource(ctx context.Context, r recordReader, first []string, types []xlsx.DataType) xlsx.RequestFunc {
	return func(req *xlsx.RowRequest) {
		rec := first
		first = nil
		if rec == nil {
			if ctx.Err() != nil {
				req.Finished = true
				return
			}
			var err error
			if rec, err = r.Read(); err != nil {
				if !errors.Is(err, io.EOF) {
					logger.Error("read", "error", err)
				}
				req.Finished = true
				return
			}
		}
		row := xlsx.NewRow()
		row.Cells = make([]*xlsx.Cell, len(rec))
		for i, s := range rec {
			if s == "" {
				continue
			}
			typ := xlsx.String
			if i < len(types) {
				typ = types[i]
			}
			row.Cells[i] = xlsx.NewCell(s, typ)
		}
		req.Row = row
	}
}
