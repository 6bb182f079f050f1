// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package exceldate converts calendar dates, times and durations
// to the serial day numbers used by spreadsheet cells and chart axes.
package exceldate

import (
	"strconv"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/type/date"
)

// Epoch is day zero of the serial date system.
var Epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// SerialDay returns the days elapsed since Epoch, the fraction being the time of day.
//
// The wall clock fields of t are used, its location is ignored.
func SerialDay(t time.Time) float64 {
	u := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	// Unix seconds do not overflow for any representable year, unlike time.Duration.
	secs := u.Unix() - Epoch.Unix()
	days := float64(secs / secondsPerDay)
	rest := float64(secs%secondsPerDay) + float64(u.Nanosecond())/1e9
	return days + rest/secondsPerDay
}

// SerialDuration returns d as a fraction of days.
func SerialDuration(d time.Duration) float64 {
	return d.Seconds() / secondsPerDay
}

// SerialDate returns the serial day of a google.type.Date.
func SerialDate(d *date.Date) float64 {
	return SerialDay(time.Date(int(d.GetYear()), time.Month(d.GetMonth()), int(d.GetDay()), 0, 0, 0, 0, time.UTC))
}

// FormatSerial formats a serial number without exponent and locale dependence.
func FormatSerial(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Layouts are tried in order by Parse.
// Day, month and hour accept one or two digits.
var Layouts = []string{
	time.RFC3339Nano,
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006.1.2.",
	"2006.1.2",
	"2.1.2006 15:04:05",
	"2.1.2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Parse parses s as a date or date-time using Layouts.
//
// Only layouts with a year are accepted, so "Jan" or "12" are not dates.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return time.Time{}, false
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
