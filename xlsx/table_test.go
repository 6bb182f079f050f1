// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"errors"
	"strconv"
	"testing"
)

// counter returns rows numbered 1..n, finishing at the last one.
type counter struct {
	n, calls    int
	finishEarly bool
}

func (c *counter) RequestRow(req *RowRequest) {
	c.calls++
	if c.calls > c.n {
		req.Finished = true
		return
	}
	req.Row = NewRow(NewCell(strconv.Itoa(c.calls), Number))
	req.Finished = c.finishEarly && c.calls == c.n
}

func TestEnumerator(t *testing.T) {
	for name, tc := range map[string]struct {
		src       *counter
		rows      int
		wantCalls int
	}{
		"empty":    {&counter{}, 0, 1},
		"three":    {&counter{n: 3}, 3, 4},
		"finished": {&counter{n: 3, finishEarly: true}, 3, 3},
	} {
		e := NewTable("t", nil, tc.src).Rows()
		var n int
		for e.Next() {
			n++
			if e.Row() == nil {
				t.Fatalf("%s: nil row", name)
			}
			if got := e.Row().Cells[0].Value(); got != strconv.Itoa(n) {
				t.Errorf("%s: got %v, wanted %d", name, got, n)
			}
		}
		if n != tc.rows || e.ItemsRead() != tc.rows {
			t.Errorf("%s: got %d rows (%d read), wanted %d", name, n, e.ItemsRead(), tc.rows)
		}
		if e.Row() != nil {
			t.Errorf("%s: current row after end: %v", name, e.Row())
		}
		// exhausted: no more requests
		for range 3 {
			if e.Next() {
				t.Errorf("%s: Next after end", name)
			}
		}
		if tc.src.calls != tc.wantCalls {
			t.Errorf("%s: got %d calls, wanted %d", name, tc.src.calls, tc.wantCalls)
		}
	}
}

func TestEnumeratorNilRow(t *testing.T) {
	var calls int
	e := NewTable("t", nil, RequestFunc(func(req *RowRequest) { calls++ })).Rows()
	if e.Next() {
		t.Error("nil row: Next returned true")
	}
	if e.Next() || calls != 1 {
		t.Errorf("got %d calls", calls)
	}
	if e.ItemsRead() != 0 {
		t.Errorf("read %d", e.ItemsRead())
	}
}

func TestEnumeratorReset(t *testing.T) {
	e := NewTable("t", nil, &counter{n: 1}).Rows()
	if err := e.Reset(); !errors.Is(err, ErrResetUnsupported) || !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("got %v", err)
	}
}

func TestEnumeratorAll(t *testing.T) {
	e := NewTable("t", nil, &counter{n: 5}).Rows()
	var n int
	for range e.All() {
		if n++; n == 2 {
			break
		}
	}
	for range e.All() {
		n++
	}
	if n != 5 || e.ItemsRead() != 5 {
		t.Errorf("got %d (read %d)", n, e.ItemsRead())
	}
}
