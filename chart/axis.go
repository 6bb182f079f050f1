// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package chart

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UNO-SOFT/xlstream/exceldate"
)

const (
	// DateFormat is the format of date category labels.
	DateFormat = "mmm dd"
	// TimeFormat is the format of the Gantt value axis.
	TimeFormat = `[$-F400]h:mm:ss\ AM/PM`
)

// axisCharts are the chart elements that have axes.
var axisCharts = map[string]bool{"c:lineChart": true, "c:barChart": true}

func isDateAxis(points []Point) bool {
	if len(points) == 0 {
		return false
	}
	_, ok := exceldate.Parse(points[0].Argument)
	return ok
}

// SetAxis appends the category and value data of the points to the series,
// and links the chart to the axes.
//
// If the first argument is a date, all arguments are converted to serial days
// for a date axis; otherwise they are category labels. The returned bool reports
// whether a date axis is needed.
// Arguments and values that cannot be parsed leave a gap at their index.
func (b *Builder) SetAxis(chart, ser *Node, points []Point) bool {
	date := isDateAxis(points)
	b.setAxisData(ser, points, date)
	b.linkAxes(chart)
	return date
}

func (b *Builder) setAxisData(ser *Node, points []Point, date bool) {
	count := strconv.Itoa(len(points))
	cat := ser.Add("c:cat")
	if date {
		lit := cat.Add("c:numLit")
		lit.Leaf("c:formatCode", DateFormat)
		lit.Val("c:ptCount", count)
		for i, p := range points {
			t, ok := exceldate.Parse(p.Argument)
			if !ok {
				continue
			}
			lit.Add("c:pt", attr("idx", i)).Leaf("c:v", exceldate.FormatSerial(exceldate.SerialDay(t)))
		}
	} else {
		lit := cat.Add("c:strLit")
		lit.Val("c:ptCount", count)
		for i, p := range points {
			lit.Add("c:pt", attr("idx", i)).Leaf("c:v", p.Argument)
		}
	}

	lit := ser.Add("c:val").Add("c:numLit")
	lit.Leaf("c:formatCode", "General")
	lit.Val("c:ptCount", count)
	for i, p := range points {
		f, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lit.Add("c:pt", attr("idx", i)).Leaf("c:v", strconv.FormatFloat(f, 'f', -1, 64))
	}
}

// linkAxes appends the axis ids to chart elements with axes, once.
func (b *Builder) linkAxes(chart *Node) {
	if !axisCharts[chart.Name] || chart.Child("c:axId") != nil {
		return
	}
	chart.Val("c:axId", b.catID)
	chart.Val("c:axId", b.valID)
}

func gridlines(ax *Node) {
	clr := ax.Add("c:majorGridlines").Add("c:spPr").Add("a:ln").
		Add("a:solidFill").Add("a:schemeClr", attr("val", "accent1"))
	clr.Add("a:alpha", attr("val", 10000))
}

func scaling(ax *Node, lo *float64) {
	s := ax.Add("c:scaling")
	s.Val("c:orientation", "minMax")
	if lo != nil {
		s.Val("c:min", strconv.FormatFloat(*lo, 'f', -1, 64))
	}
}

// SetValueAxis appends the value (Y) axis with gridlines and without tick marks.
func (b *Builder) SetValueAxis(plotArea *Node, spec Spec) *Node {
	ax := plotArea.Add("c:valAx")
	ax.Val("c:axId", b.valID)
	scaling(ax, nil)
	ax.Val("c:delete", boolVal(!spec.AxisY))
	ax.Val("c:axPos", "l")
	gridlines(ax)
	if spec.AxisYTitle != "" {
		ax.Append(b.title(spec.Kind, spec.AxisYTitle))
	}
	ax.Add("c:numFmt", attr("formatCode", "General"), attr("sourceLinked", true))
	ax.Val("c:majorTickMark", "none")
	ax.Val("c:minorTickMark", "none")
	ax.Val("c:tickLblPos", "nextTo")
	ax.Val("c:crossAx", b.catID)
	ax.Val("c:crosses", "autoZero")
	ax.Val("c:crossBetween", "between")
	return ax
}

// SetCategoryAxis appends the category (X) axis: a date axis if date is true,
// a text category axis otherwise. Major ticks are off, minor ticks are outside.
func (b *Builder) SetCategoryAxis(plotArea *Node, spec Spec, date bool) *Node {
	name := "c:catAx"
	if date {
		name = "c:dateAx"
	}
	ax := plotArea.Add(name)
	ax.Val("c:axId", b.catID)
	scaling(ax, nil)
	ax.Val("c:delete", boolVal(!spec.AxisX))
	ax.Val("c:axPos", "b")
	if spec.AxisXTitle != "" {
		ax.Append(b.title(spec.Kind, spec.AxisXTitle))
	}
	if date {
		ax.Add("c:numFmt", attr("formatCode", DateFormat), attr("sourceLinked", false))
	}
	ax.Val("c:majorTickMark", "none")
	ax.Val("c:minorTickMark", "out")
	ax.Val("c:tickLblPos", "nextTo")
	ax.Val("c:crossAx", b.valID)
	ax.Val("c:crosses", "autoZero")
	ax.Val("c:auto", "1")
	if date {
		ax.Val("c:lblOffset", "100")
		ax.Val("c:baseTimeUnit", "days")
	} else {
		ax.Val("c:lblAlgn", "ctr")
		ax.Val("c:lblOffset", "100")
		ax.Val("c:noMultiLvlLbl", "0")
	}
	return ax
}

// setGanttData appends the task names as categories to both series,
// the start offsets to the first and the durations to the second.
// A task ending before its start leaves a gap.
func (b *Builder) setGanttData(offsets, durations *Node, tasks []Task) {
	count := strconv.Itoa(len(tasks))
	for _, ser := range []*Node{offsets, durations} {
		lit := ser.Add("c:cat").Add("c:strLit")
		lit.Val("c:ptCount", count)
		for i, t := range tasks {
			lit.Add("c:pt", attr("idx", i)).Leaf("c:v", t.Name)
		}
	}
	starts := numLit(offsets)
	lengths := numLit(durations)
	for _, lit := range []*Node{starts, lengths} {
		lit.Leaf("c:formatCode", "General")
		lit.Val("c:ptCount", count)
	}
	for i, t := range tasks {
		starts.Add("c:pt", attr("idx", i)).Leaf("c:v",
			exceldate.FormatSerial(exceldate.SerialDuration(t.Start)))
		if t.End < t.Start {
			continue
		}
		lengths.Add("c:pt", attr("idx", i)).Leaf("c:v",
			exceldate.FormatSerial(exceldate.SerialDuration(t.End-t.Start)))
	}
}

func numLit(ser *Node) *Node { return ser.Add("c:val").Add("c:numLit") }

// setGanttCategoryAxis appends the task name axis, on the left of the horizontal bars.
func (b *Builder) setGanttCategoryAxis(plotArea *Node, spec Spec) *Node {
	ax := plotArea.Add("c:catAx")
	ax.Val("c:axId", b.catID)
	s := ax.Add("c:scaling")
	// first task on top
	s.Val("c:orientation", "maxMin")
	ax.Val("c:delete", boolVal(!spec.AxisX))
	ax.Val("c:axPos", "l")
	if spec.AxisXTitle != "" {
		ax.Append(b.title(spec.Kind, spec.AxisXTitle))
	}
	ax.Val("c:majorTickMark", "none")
	ax.Val("c:minorTickMark", "out")
	ax.Val("c:tickLblPos", "nextTo")
	ax.Val("c:crossAx", b.valID)
	ax.Val("c:crosses", "autoZero")
	ax.Val("c:auto", "1")
	ax.Val("c:lblAlgn", "ctr")
	ax.Val("c:lblOffset", "100")
	ax.Val("c:noMultiLvlLbl", "0")
	return ax
}

// GanttAxisMin returns the minimum of the Gantt time axis:
// the earliest start, truncated to the hour.
func GanttAxisMin(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	m := tasks[0].Start
	for _, t := range tasks[1:] {
		m = min(m, t.Start)
	}
	return exceldate.SerialDuration(max(0, m.Truncate(time.Hour)))
}

// setGanttValueAxis appends the time axis, with hourly major units.
func (b *Builder) setGanttValueAxis(plotArea *Node, spec Spec, tasks []Task) *Node {
	ax := plotArea.Add("c:valAx")
	ax.Val("c:axId", b.valID)
	m := GanttAxisMin(tasks)
	scaling(ax, &m)
	ax.Val("c:delete", boolVal(!spec.AxisY))
	ax.Val("c:axPos", "b")
	gridlines(ax)
	if spec.AxisYTitle != "" {
		ax.Append(b.title(spec.Kind, spec.AxisYTitle))
	}
	ax.Add("c:numFmt", attr("formatCode", TimeFormat), attr("sourceLinked", false))
	ax.Val("c:majorTickMark", "none")
	ax.Val("c:minorTickMark", "none")
	ax.Val("c:tickLblPos", "nextTo")
	ax.Val("c:crossAx", b.catID)
	ax.Val("c:crosses", "autoZero")
	ax.Val("c:crossBetween", "between")
	ax.Val("c:majorUnit", strconv.FormatFloat(exceldate.SerialDuration(time.Hour), 'f', -1, 64))
	return ax
}
