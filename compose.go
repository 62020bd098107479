package folio

import (
	"slices"
)

// Shape is the size class of a gallery tile.
type Shape string

const (
	ShapeLargeHorizontal Shape = "large-horizontal"
	ShapeMedium          Shape = "medium"
	ShapeMediumSquare    Shape = "medium-square"
	ShapeTall            Shape = "tall"
	ShapeSmall           Shape = "small"
	ShapeWide            Shape = "wide"
)

// Accent is a category-specific emphasis applied on top of the base shape.
type Accent string

const (
	AccentWide      Accent = "wide"
	AccentTall      Accent = "tall"
	AccentHighlight Accent = "highlight"
)

// Layout describes how a tile is placed on the grid.
type Layout struct {
	Shape   Shape    `json:"shape"`
	ColSpan int      `json:"col_span"`
	RowSpan int      `json:"row_span"`
	Accents []Accent `json:"accents"`
	Badge   string   `json:"badge"`
}

type Tile struct {
	Photo  Photo  `json:"photo"`
	Layout Layout `json:"layout"`
}

// Gallery is the composed view: an optional featured hero and the ordered tiles.
type Gallery struct {
	Hero  *Photo `json:"hero"`
	Tiles []Tile `json:"tiles"`
}

type shapeStep struct {
	shape   Shape
	colSpan int
	rowSpan int
}

var shapeCycle = [...]shapeStep{
	{ShapeLargeHorizontal, 7, 3},
	{ShapeMedium, 5, 2},
	{ShapeMediumSquare, 4, 2},
	{ShapeTall, 3, 3},
	{ShapeMedium, 5, 2},
	{ShapeMedium, 4, 2},
	{ShapeSmall, 3, 1},
	{ShapeWide, 8, 2},
	{ShapeTall, 4, 3},
	{ShapeMedium, 4, 2},
}

func mod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// LayoutFor returns the layout of the tile at index for a photo of category.
// It depends on nothing else, so the same inputs always produce the same layout.
func LayoutFor(index int, category Category) Layout {
	step := shapeCycle[mod(index, len(shapeCycle))]
	l := Layout{
		Shape:   step.shape,
		ColSpan: step.colSpan,
		RowSpan: step.rowSpan,
		Accents: []Accent{},
	}

	switch category {
	case CategoryCinematography:
		l.Badge = "cinema"
		if mod(index, 5) == 0 {
			l.Accents = append(l.Accents, AccentWide)
		}
		if mod(index, 7) == 0 {
			l.Accents = append(l.Accents, AccentTall)
		}
	case CategoryWildlife:
		l.Badge = "wildlife"
		if mod(index, 6) == 0 {
			l.Accents = append(l.Accents, AccentHighlight)
		}
	}

	return l
}

// SortPhotos orders photos featured first, then by display_order ascending,
// then newest first. The sort is stable.
func SortPhotos(photos []Photo) {
	slices.SortStableFunc(photos, func(a, b Photo) int {
		if a.IsFeatured != b.IsFeatured {
			if a.IsFeatured {
				return -1
			}
			return 1
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Compose builds the gallery view from photos already in display order.
// The first photo becomes the hero when it is featured. Tile layouts are
// indexed by position among the non-featured photos; any further featured
// photos lead the tiles and take their layout from their own sequence.
func Compose(photos []Photo) Gallery {
	g := Gallery{Tiles: make([]Tile, 0, len(photos))}

	rest := photos
	if len(photos) > 0 && photos[0].IsFeatured {
		hero := photos[0]
		g.Hero = &hero
		rest = photos[1:]
	}

	var featured, plain int
	for _, p := range rest {
		idx := &plain
		if p.IsFeatured {
			idx = &featured
		}
		g.Tiles = append(g.Tiles, Tile{Photo: p, Layout: LayoutFor(*idx, p.Category)})
		*idx++
	}

	return g
}
