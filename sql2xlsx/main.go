// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command sql2xlsx streams the result of SQL queries into the sheets of an xlsx workbook.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/xlstream/sqlsource"
	"github.com/UNO-SOFT/xlstream/xlsx"
	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
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
	fs := flag.NewFlagSet("sql2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagDriver := fs.String("driver", "postgres", "database/sql driver name (postgres or sqlite3)")
	flagDSN := fs.String("dsn", "", "data source name")
	flagOut := fs.String("o", "-", "output file name")

	app := ffcli.Command{Name: "sql2xlsx", FlagSet: fs,
		ShortUsage: "sql2xlsx [flags] [sheet:]<query>...",
		Options:    []ff.Option{ff.WithEnvVarPrefix("SQL2XLSX")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return flag.ErrHelp
			}
			db, err := sql.Open(*flagDriver, *flagDSN)
			if err != nil {
				return fmt.Errorf("open %s: %w", *flagDriver, err)
			}
			defer db.Close()

			fh := os.Stdout
			if !(*flagOut == "" || *flagOut == "-") {
				if fh, err = os.Create(*flagOut); err != nil {
					return err
				}
			}
			defer fh.Close()
			w := xlsx.NewWriter(fh, xlsx.WithLogger(logger))
			for i, qry := range args {
				sheetName := fmt.Sprintf("Sheet%d", i+1)
				if i := strings.Index(qry, ":"); i >= 0 && !strings.ContainsAny(qry[:i], " \t\n") {
					sheetName, qry = qry[:i], qry[i+1:]
				}
				if err := copyQuery(ctx, w, db, sheetName, qry); err != nil {
					return fmt.Errorf("%s: %w", sheetName, err)
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

func copyQuery(ctx context.Context, w *xlsx.Writer, db *sql.DB, sheetName, qry string) error {
	rows, err := db.QueryContext(ctx, qry)
	if err != nil {
		return fmt.Errorf("%s: %w", qry, err)
	}
	defer rows.Close()
	src, err := sqlsource.New(rows)
	if err != nil {
		return err
	}
	n, err := w.WriteTable(src.Table(sheetName))
	logger.Info("written", "sheet", sheetName, "rows", n)
	if err != nil {
		return err
	}
	if err = src.Err(); err != nil {
		return err
	}
	return rows.Close()
}
