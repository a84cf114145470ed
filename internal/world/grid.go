// Package world provides the square tile grid, terrain, and map generation.
// Tiles are stored row-major; adjacency is 4-connected.
package world

import "github.com/talgya/conquest/internal/economy"

// NationID identifies the owner of a tile.
// Non-negative values are nations; the two negative values are sentinels.
type NationID int

const (
	Neutral     NationID = -1 // Claimable land nobody holds
	Unclaimable NationID = -2 // Water, never owned
)

// IsNation reports whether id refers to an actual nation.
func (id NationID) IsNation() bool { return id >= 0 }

// Terrain types for grid tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Baseline defense
	TerrainDesert                  // Baseline defense, dry
	TerrainMountain                // Highest defense
	TerrainWater                   // Unclaimable
)

// Point is a grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Adjacent reports whether q is one orthogonal step from p.
func (p Point) Adjacent(q Point) bool {
	dx := p.X - q.X
	dy := p.Y - q.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}

// Directions lists the four orthogonal neighbour offsets.
var Directions = [4]Point{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// Tile is a single grid cell.
type Tile struct {
	Pos       Point                 `json:"pos"`
	Terrain   Terrain               `json:"terrain"`
	Owner     NationID              `json:"owner"`
	Balance   float64               `json:"balance"` // Local reservoir: attack fuel and defense
	Structure economy.StructureKind `json:"structure,omitempty"`
}

// HasStructure reports whether a structure stands on the tile.
func (t *Tile) HasStructure() bool { return t.Structure != economy.NoStructure }

// IsWater reports whether the tile is water.
func (t *Tile) IsWater() bool { return t.Terrain == TerrainWater }

// Grid holds the full map.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"` // len = Width*Height, row-major
}

// NewGrid allocates a grid of neutral plains.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height, Tiles: make([]Tile, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Tiles[g.Idx(x, y)] = Tile{Pos: Point{X: x, Y: y}, Owner: Neutral}
		}
	}
	return g
}

// Idx returns the linear index for (x, y).
func (g *Grid) Idx(x, y int) int { return y*g.Width + x }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the tile at (x, y), or nil if out of bounds.
func (g *Grid) At(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.Tiles[g.Idx(x, y)]
}

// Get returns the tile at p, or nil if out of bounds.
func (g *Grid) Get(p Point) *Tile { return g.At(p.X, p.Y) }

// Neighbors returns the in-bounds orthogonal neighbours of p.
func (g *Grid) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range Directions {
		nx, ny := p.X+d.X, p.Y+d.Y
		if g.InBounds(nx, ny) {
			out = append(out, Point{X: nx, Y: ny})
		}
	}
	return out
}

// IsCoastal reports whether a land tile at p touches water.
func (g *Grid) IsCoastal(p Point) bool {
	t := g.Get(p)
	if t == nil || t.IsWater() {
		return false
	}
	for _, n := range g.Neighbors(p) {
		if g.Get(n).IsWater() {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, Tiles: make([]Tile, len(g.Tiles))}
	copy(c.Tiles, g.Tiles)
	return c
}

// LandCount returns the number of non-water tiles.
func (g *Grid) LandCount() int {
	n := 0
	for i := range g.Tiles {
		if !g.Tiles[i].IsWater() {
			n++
		}
	}
	return n
}

// LandTiles returns the coordinates of every land tile in row-major order.
func (g *Grid) LandTiles() []Point {
	var out []Point
	for i := range g.Tiles {
		if !g.Tiles[i].IsWater() {
			out = append(out, g.Tiles[i].Pos)
		}
	}
	return out
}
