// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package chart builds DrawingML chart parts (line/time series, pie and Gantt charts)
// and the drawing anchors placing them on a worksheet.
//
// A chart is built once by Builder.Build, then placed by Builder.SetLocation;
// the resulting nodes are not modified afterwards.
package chart

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	nsChart       = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	nsDrawing     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsSpreadsheet = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsRel         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

var (
	ErrAxisIDs     = errors.New("chart: category and value axis ids must differ")
	ErrNoPalette   = errors.New("chart: empty palette")
	ErrNoData      = errors.New("chart: no data")
	ErrUnknownKind = errors.New("chart: unknown kind")
)

// Kind is the chart variant.
type Kind uint8

const (
	// Line is a line chart; with date arguments it is a time series.
	Line Kind = iota
	Pie
	Gantt
)

var kindNames = [...]string{Line: "line", Pie: "pie", Gantt: "gantt"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%d: %w", k, ErrUnknownKind)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch s := strings.ToLower(strings.TrimSpace(string(b))); s {
	case "line", "timeseries", "time-series", "time_series":
		*k = Line
	case "pie":
		*k = Pie
	case "gantt":
		*k = Gantt
	default:
		return fmt.Errorf("%q: %w", s, ErrUnknownKind)
	}
	return nil
}

// Spec describes the presentation of a chart.
type Spec struct {
	Kind       Kind
	Title      string
	AxisXTitle string
	AxisYTitle string
	// Width and Height are advisory: a placed chart always spans Columns x Rows cells.
	Width, Height int
	Legend        bool
	AxisX, AxisY  bool
	// SeriesColors, as RRGGBB, replace the palette of the Builder for this chart.
	SeriesColors []string
}

// NewSpec returns the default Spec of the variant:
// legend and axes are visible, except that a pie chart has no axes.
func NewSpec(k Kind) Spec {
	s := Spec{Kind: k, Legend: true, AxisX: true, AxisY: true}
	if int(k) < len(variants) && variants[k].defaults != nil {
		variants[k].defaults(&s)
	}
	return s
}

// Point is one data point of a line or pie series.
type Point struct {
	// Argument is the category label, or a date.
	Argument string `yaml:"argument"`
	// Value is a number in invariant format.
	Value string `yaml:"value"`
}

// Series is a named sequence of points.
type Series struct {
	Title  string  `yaml:"title"`
	Points []Point `yaml:"points"`
}

// Task is one bar of a Gantt chart, Start and End measured from midnight.
type Task struct {
	Name  string        `yaml:"name"`
	Start time.Duration `yaml:"start"`
	End   time.Duration `yaml:"end"`
}

// Data is the data of a chart: Series for line and pie charts, Tasks for Gantt charts.
type Data struct {
	Series []Series
	Tasks  []Task
}

// DefaultPalette is the colors of data points, cycled when there are more points.
var DefaultPalette = [...]string{
	"800000", "008000", "000080", "808000", "800080", "008080", "808080",
	"C00000", "00C000", "0000C0", "C0C000", "C000C0", "00C0C0", "C0C0C0",
	"400000", "004000", "000040", "404000", "400040", "004040", "404040",
	"200000", "002000", "000020", "202000", "200020", "002020", "202020",
	"600000", "006000", "000060", "606000", "600060", "006060", "606060",
	"A00000", "00A000", "0000A0", "A0A000", "A000A0", "00A0A0", "A0A0A0",
	"E00000", "00E000", "0000E0", "E0E000", "E000E0", "00E0E0", "E0E0E0",
}

// Config of a Builder.
type Config struct {
	// Palette of RRGGBB colors for data points and series.
	Palette []string
	// CategoryAxisID and ValueAxisID link the axes of a chart to each other.
	CategoryAxisID, ValueAxisID uint32
}

// DefaultConfig returns the default palette and axis ids.
func DefaultConfig() Config {
	return Config{
		Palette:        slices.Clone(DefaultPalette[:]),
		CategoryAxisID: 48650112,
		ValueAxisID:    48672768,
	}
}

// Builder builds charts. It holds no mutable state, so it can be shared.
type Builder struct {
	palette      []string
	catID, valID string
}

// NewBuilder returns a Builder for the Config.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.CategoryAxisID == cfg.ValueAxisID {
		return nil, fmt.Errorf("%d: %w", cfg.ValueAxisID, ErrAxisIDs)
	}
	if len(cfg.Palette) == 0 {
		return nil, ErrNoPalette
	}
	return &Builder{
		palette: slices.Clone(cfg.Palette),
		catID:   strconv.FormatUint(uint64(cfg.CategoryAxisID), 10),
		valID:   strconv.FormatUint(uint64(cfg.ValueAxisID), 10),
	}, nil
}

// Color returns the palette color of the i-th point, cycling the palette.
func (b *Builder) Color(i int) string {
	if i < 0 {
		i = -i
	}
	return b.palette[i%len(b.palette)]
}

func (b *Builder) withPalette(colors []string) *Builder {
	if len(colors) == 0 {
		return b
	}
	c := *b
	c.palette = colors
	return &c
}

// variant is the table of operations of a chart Kind.
// A nil shape falls back to the shared SetShapeProperties.
type variant struct {
	defaults  func(*Spec)
	container func(b *Builder, plotArea *Node) *Node
	shape     func(b *Builder, ser *Node, ordinal int, visible bool, colorPoints int)
	populate  func(b *Builder, spec *Spec, plotArea, chart *Node, data Data) error
	legend    func(b *Builder, chart *Node, spec Spec)
	title     func(b *Builder, text string) *Node
}

// variants is filled in init, as the populate functions dispatch through it.
var variants [Gantt + 1]variant

func init() {
	variants = [...]variant{
		Line: {
			container: lineContainer,
			shape:     lineShape,
			populate:  populateLine,
		},
		Pie: {
			defaults:  func(s *Spec) { s.AxisX, s.AxisY = false, false },
			container: pieContainer,
			populate:  populatePie,
		},
		Gantt: {
			container: ganttContainer,
			populate:  populateGantt,
		},
	}
}

func lookup(k Kind) (variant, error) {
	if int(k) >= len(variants) {
		return variant{}, fmt.Errorf("%s: %w", k, ErrUnknownKind)
	}
	return variants[k], nil
}

// Build returns the c:chartSpace element of a chart part.
func (b *Builder) Build(spec Spec, data Data) (*Node, error) {
	v, err := lookup(spec.Kind)
	if err != nil {
		return nil, err
	}
	b = b.withPalette(spec.SeriesColors)
	space := NewNode("c:chartSpace",
		attr("xmlns:c", nsChart), attr("xmlns:a", nsDrawing), attr("xmlns:r", nsRel))
	space.Val("c:date1904", "0")
	space.Val("c:roundedCorners", "0")
	ch := space.Add("c:chart")
	if spec.Title != "" {
		ch.Append(b.title(spec.Kind, spec.Title))
		ch.Val("c:autoTitleDeleted", "0")
	} else {
		ch.Val("c:autoTitleDeleted", "1")
	}
	plotArea := ch.Add("c:plotArea")
	plotArea.Add("c:layout")
	container := v.container(b, plotArea)
	if err := v.populate(b, &spec, plotArea, container, data); err != nil {
		return nil, fmt.Errorf("%s chart %q: %w", spec.Kind, spec.Title, err)
	}
	b.legend(spec.Kind, ch, spec)
	ch.Val("c:dispBlanksAs", "gap")
	return space, nil
}

// CreateChartContainer appends the variant specific chart element to the plot area.
func (b *Builder) CreateChartContainer(k Kind, plotArea *Node) (*Node, error) {
	v, err := lookup(k)
	if err != nil {
		return nil, err
	}
	return v.container(b, plotArea), nil
}

func lineContainer(b *Builder, plotArea *Node) *Node {
	c := plotArea.Add("c:lineChart")
	c.Val("c:grouping", "standard")
	c.Val("c:varyColors", "0")
	c.Val("c:marker", "1")
	return c
}

func pieContainer(b *Builder, plotArea *Node) *Node {
	c := plotArea.Add("c:pieChart")
	c.Val("c:varyColors", "1")
	c.Val("c:firstSliceAng", "0")
	return c
}

// ganttContainer is a stacked horizontal bar chart: an invisible offset bar and a visible duration bar.
func ganttContainer(b *Builder, plotArea *Node) *Node {
	c := plotArea.Add("c:barChart")
	c.Val("c:barDir", "bar")
	c.Val("c:grouping", "stacked")
	c.Val("c:varyColors", "0")
	c.Val("c:gapWidth", "50")
	c.Val("c:overlap", "100")
	return c
}

// seriesLead are the elements preceding the series in any chart element.
var seriesLead = map[string]bool{"c:barDir": true, "c:grouping": true, "c:varyColors": true, "c:ser": true}

// CreateSeries inserts a new series after the existing ones, and returns it.
func (b *Builder) CreateSeries(title string, ordinal uint32, chart *Node) *Node {
	ser := NewNode("c:ser")
	ser.Val("c:idx", strconv.FormatUint(uint64(ordinal), 10))
	ser.Val("c:order", strconv.FormatUint(uint64(ordinal), 10))
	ser.Add("c:tx").Leaf("c:v", title)
	i := 0
	for i < len(chart.Children) && seriesLead[chart.Children[i].Name] {
		i++
	}
	chart.Children = slices.Insert(chart.Children, i, ser)
	return ser
}

// SetShapeProperties sets the fill and outline of the series:
// no fill at all when not visible, and a distinct palette color
// for each of the first colorPoints data points.
func (b *Builder) SetShapeProperties(ser *Node, visible bool, colorPoints int) {
	sp := ser.Add("c:spPr")
	if !visible {
		sp.Add("a:noFill")
	}
	noLine(sp)
	sp.Add("a:effectLst")
	for i := 0; i < colorPoints; i++ {
		dp := ser.Add("c:dPt")
		dp.Val("c:idx", strconv.Itoa(i))
		dp.Val("c:invertIfNegative", "0")
		dp.Val("c:bubble3D", "0")
		sp := dp.Add("c:spPr")
		sp.Add("a:solidFill").Add("a:srgbClr", attr("val", b.Color(i)))
		noLine(sp)
		sp.Add("a:effectLst")
	}
}

// shape applies the shape properties of the variant of k.
func (b *Builder) shape(k Kind, ser *Node, ordinal int, visible bool, colorPoints int) {
	if f := variants[k].shape; f != nil {
		f(b, ser, ordinal, visible, colorPoints)
		return
	}
	b.SetShapeProperties(ser, visible, colorPoints)
}

func (b *Builder) legend(k Kind, chart *Node, spec Spec) {
	if f := variants[k].legend; f != nil {
		f(b, chart, spec)
		return
	}
	b.SetLegend(chart, spec)
}

func (b *Builder) title(k Kind, text string) *Node {
	if f := variants[k].title; f != nil {
		return f(b, text)
	}
	return Title(text)
}

func noLine(sp *Node) {
	ln := sp.Add("a:ln", attr("w", 28575), attr("cap", "rnd"))
	ln.Add("a:noFill")
	ln.Add("a:round")
}

// lineShape draws the series line with its own color, without markers.
func lineShape(b *Builder, ser *Node, ordinal int, visible bool, colorPoints int) {
	sp := ser.Add("c:spPr")
	ln := sp.Add("a:ln", attr("w", 28575), attr("cap", "rnd"))
	if visible {
		ln.Add("a:solidFill").Add("a:srgbClr", attr("val", b.Color(ordinal)))
	} else {
		ln.Add("a:noFill")
	}
	ln.Add("a:round")
	sp.Add("a:effectLst")
	ser.Add("c:marker").Val("c:symbol", "none")
}

func populateLine(b *Builder, spec *Spec, plotArea, chart *Node, data Data) error {
	if len(data.Series) == 0 {
		return ErrNoData
	}
	// the first series decides the category axis type for all
	date := isDateAxis(data.Series[0].Points)
	for i, s := range data.Series {
		ser := b.CreateSeries(s.Title, uint32(i), chart)
		b.shape(spec.Kind, ser, i, true, 0)
		b.setAxisData(ser, s.Points, date)
		ser.Val("c:smooth", "0")
	}
	b.linkAxes(chart)
	b.SetCategoryAxis(plotArea, *spec, date)
	b.SetValueAxis(plotArea, *spec)
	return nil
}

func populatePie(b *Builder, spec *Spec, plotArea, chart *Node, data Data) error {
	if len(data.Series) == 0 {
		return ErrNoData
	}
	for i, s := range data.Series {
		ser := b.CreateSeries(s.Title, uint32(i), chart)
		b.shape(spec.Kind, ser, i, true, len(s.Points))
		b.SetAxis(chart, ser, s.Points)
	}
	return nil
}

func populateGantt(b *Builder, spec *Spec, plotArea, chart *Node, data Data) error {
	if len(data.Tasks) == 0 {
		return ErrNoData
	}
	offsets := b.CreateSeries("Start", 0, chart)
	b.shape(spec.Kind, offsets, 0, false, 0)
	durations := b.CreateSeries("Duration", 1, chart)
	b.shape(spec.Kind, durations, 1, true, len(data.Tasks))
	b.setGanttData(offsets, durations, data.Tasks)
	b.linkAxes(chart)
	b.setGanttCategoryAxis(plotArea, *spec)
	b.setGanttValueAxis(plotArea, *spec, data.Tasks)
	return nil
}

// SetLegend appends a legend at the bottom, if the legend is visible.
func (b *Builder) SetLegend(chart *Node, spec Spec) {
	if !spec.Legend {
		return
	}
	l := chart.Add("c:legend")
	l.Val("c:legendPos", "b")
	l.Add("c:layout")
	l.Val("c:overlay", "0")
	chart.Val("c:plotVisOnly", "1")
}

// Title returns a c:title element holding text as a single rich text paragraph.
func Title(text string) *Node {
	t := NewNode("c:title")
	rich := t.Add("c:tx").Add("c:rich")
	rich.Add("a:bodyPr")
	rich.Add("a:lstStyle")
	p := rich.Add("a:p")
	p.Add("a:pPr").Add("a:defRPr")
	r := p.Add("a:r")
	r.Add("a:rPr", attr("lang", "en-US"))
	r.Leaf("a:t", text)
	t.Val("c:overlay", "0")
	return t
}
