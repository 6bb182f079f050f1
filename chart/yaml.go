// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package chart

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Definition is a chart to be placed on a sheet.
type Definition struct {
	// Sheet is the name of the sheet, empty means the first one.
	Sheet    string
	Location Location
	Spec     Spec
	Data     Data
}

type definitionDoc struct {
	Sheet      string   `yaml:"sheet"`
	Location   Location `yaml:"location"`
	Kind       Kind     `yaml:"kind"`
	Title      string   `yaml:"title"`
	AxisXTitle string   `yaml:"axisXTitle"`
	AxisYTitle string   `yaml:"axisYTitle"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Legend     *bool    `yaml:"legend"`
	AxisX      *bool    `yaml:"axisX"`
	AxisY      *bool    `yaml:"axisY"`
	Colors     []string `yaml:"colors"`
	Series     []Series `yaml:"series"`
	Tasks      []Task   `yaml:"tasks"`
}

// LoadDefinitions reads chart definitions: each YAML document is a list of them.
//
//	# charts.yaml
//	- sheet: Sales
//	  kind: timeseries
//	  title: Daily
//	  location: {column: 5, row: 1}
//	  series:
//	    - title: Revenue
//	      points:
//	        - {argument: 2024-01-01, value: 12.5}
//	- kind: gantt
//	  tasks:
//	    - {name: build, start: 9h, end: 9h30m}
//
// Missing legend and axis flags take the defaults of NewSpec.
func LoadDefinitions(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var defs []Definition
	for {
		var docs []definitionDoc
		if err := dec.Decode(&docs); err != nil {
			if errors.Is(err, io.EOF) {
				return defs, nil
			}
			return defs, fmt.Errorf("decode chart definitions: %w", err)
		}
		for _, d := range docs {
			spec := NewSpec(d.Kind)
			spec.Title, spec.AxisXTitle, spec.AxisYTitle = d.Title, d.AxisXTitle, d.AxisYTitle
			spec.Width, spec.Height = d.Width, d.Height
			spec.SeriesColors = d.Colors
			for _, x := range []struct {
				src *bool
				dst *bool
			}{{d.Legend, &spec.Legend}, {d.AxisX, &spec.AxisX}, {d.AxisY, &spec.AxisY}} {
				if x.src != nil {
					*x.dst = *x.src
				}
			}
			defs = append(defs, Definition{
				Sheet: d.Sheet, Location: d.Location, Spec: spec,
				Data: Data{Series: d.Series, Tasks: d.Tasks},
			})
		}
	}
}
