// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package styles deduplicates cell formatting into the dense index table
// referenced by the "s" attribute of worksheet cells.
package styles

// Color is an RGB color as six hex digits, such as "FF0000". Empty means unset.
type Color string

// ARGB returns the opaque ARGB form used by the styles part.
func (c Color) ARGB() string {
	if len(c) == 6 {
		return "FF" + string(c)
	}
	return string(c)
}

// HAlign is the horizontal alignment; the zero value means unset.
type HAlign uint8

const (
	HAlignLeft HAlign = iota + 1
	HAlignCenter
	HAlignRight
	HAlignJustify
	HAlignFill
	HAlignDistributed
)

var hAlignNames = [...]string{"", "left", "center", "right", "justify", "fill", "distributed"}

func (a HAlign) String() string {
	if int(a) < len(hAlignNames) {
		return hAlignNames[a]
	}
	return ""
}

// VAlign is the vertical alignment; the zero value means unset.
type VAlign uint8

const (
	VAlignTop VAlign = iota + 1
	VAlignCenter
	VAlignBottom
	VAlignJustify
)

var vAlignNames = [...]string{"", "top", "center", "bottom", "justify"}

func (a VAlign) String() string {
	if int(a) < len(vAlignNames) {
		return vAlignNames[a]
	}
	return ""
}

// Font of a cell. The zero value is the workbook default font.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
}

// Descriptor is the complete formatting of a cell.
// It is comparable, so equal descriptors are the same map key.
type Descriptor struct {
	Font       Font
	Background Color
	// Foreground is the font color.
	Foreground Color
	Horizontal HAlign
	Vertical   VAlign
	Indent     int
	WrapText   bool
	IsDate     bool
	// Format is a custom number format code, like "0.00" or "yyyy-mm-dd".
	Format string
}

// IsZero reports whether d is the unstyled descriptor.
func (d Descriptor) IsZero() bool { return d == Descriptor{} }

// Cache maps descriptors to indexes in first-seen order.
// Index 0 is the default style, and is never returned by Intern.
//
// Cache is not safe for concurrent use.
type Cache struct {
	index map[Descriptor]int
	order []Descriptor
}

// NewCache returns an empty Cache. The zero Cache is also ready to use.
func NewCache() *Cache {
	var c Cache
	c.init()
	return &c
}

func (c *Cache) init() {
	if c.index != nil {
		return
	}
	// the unstyled descriptor always resolves to the default slot
	c.index = map[Descriptor]int{{}: 0}
	c.order = []Descriptor{{}}
}

// Intern returns the index of d, allocating the next one for a new descriptor.
// The zero Descriptor resolves to 0.
func (c *Cache) Intern(d Descriptor) int {
	c.init()
	if i, ok := c.index[d]; ok {
		return i
	}
	i := len(c.order)
	c.order = append(c.order, d)
	c.index[d] = i
	return i
}

// Export returns the descriptors by index: element i is the descriptor
// Intern returned i for, element 0 is the default (zero) descriptor.
func (c *Cache) Export() []Descriptor {
	if len(c.order) == 0 {
		return []Descriptor{{}}
	}
	return append([]Descriptor(nil), c.order...)
}

// Len returns the number of interned descriptors, not counting the default.
func (c *Cache) Len() int {
	if len(c.order) == 0 {
		return 0
	}
	return len(c.order) - 1
}
