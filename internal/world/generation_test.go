package world

import (
	"slices"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	a := GenerateMap(MapContinent, 42, 60, 40)
	b := GenerateMap(MapContinent, 42, 60, 40)

	if !slices.Equal(a.Tiles, b.Tiles) {
		t.Fatal("same seed and dimensions must produce identical grids")
	}

	c := GenerateMap(MapContinent, 43, 60, 40)
	if slices.Equal(a.Tiles, c.Tiles) {
		t.Fatal("different seeds produced identical grids")
	}
}

func TestGenerateTileInvariants(t *testing.T) {
	for _, mt := range []MapType{MapContinent, MapArchipelago} {
		g := GenerateMap(mt, 7, 48, 32)
		if g.Width != 48 || g.Height != 32 || len(g.Tiles) != 48*32 {
			t.Fatalf("%s: unexpected dimensions %dx%d (%d tiles)", mt, g.Width, g.Height, len(g.Tiles))
		}
		for i := range g.Tiles {
			tile := &g.Tiles[i]
			if tile.Pos != (Point{X: i % g.Width, Y: i / g.Width}) {
				t.Fatalf("%s: tile %d has position %+v", mt, i, tile.Pos)
			}
			if tile.Balance != 0 || tile.HasStructure() {
				t.Fatalf("%s: tile %+v must start empty", mt, tile.Pos)
			}
			if tile.IsWater() && tile.Owner != Unclaimable {
				t.Fatalf("%s: water tile %+v owner=%d", mt, tile.Pos, tile.Owner)
			}
			if !tile.IsWater() && tile.Owner != Neutral {
				t.Fatalf("%s: land tile %+v owner=%d", mt, tile.Pos, tile.Owner)
			}
		}
	}
}

func TestArchipelagoHasMoreWater(t *testing.T) {
	cont := GenerateMap(MapContinent, 11, 120, 80)
	arch := GenerateMap(MapArchipelago, 11, 120, 80)

	contWater := TerrainCounts(cont)[TerrainWater]
	archWater := TerrainCounts(arch)[TerrainWater]
	if archWater <= contWater {
		t.Fatalf("archipelago water=%d, continent water=%d", archWater, contWater)
	}
}

func TestContinentCenterIsLand(t *testing.T) {
	g := GenerateMap(MapContinent, 5, 120, 80)
	if g.At(60, 40).IsWater() {
		t.Fatal("continent center should be land")
	}
}

func TestGenerateSingleTile(t *testing.T) {
	g := GenerateMap(MapArchipelago, 1, 1, 1)
	if len(g.Tiles) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(g.Tiles))
	}
	if len(g.Neighbors(Point{})) != 0 {
		t.Fatal("a 1x1 grid has no neighbours")
	}
}

func TestParseMapType(t *testing.T) {
	if mt, err := ParseMapType("Archipelago"); err != nil || mt != MapArchipelago {
		t.Fatalf("parse archipelago: %v %v", mt, err)
	}
	if _, err := ParseMapType("pangaea"); err == nil {
		t.Fatal("expected error for unknown map type")
	}
}

func TestGridGeometry(t *testing.T) {
	g := NewGrid(3, 2)
	g.At(0, 0).Terrain = TerrainWater
	g.At(0, 0).Owner = Unclaimable

	if !g.IsCoastal(Point{X: 1, Y: 0}) {
		t.Fatal("(1,0) touches water")
	}
	if g.IsCoastal(Point{X: 2, Y: 1}) {
		t.Fatal("(2,1) does not touch water")
	}
	if g.LandCount() != 5 {
		t.Fatalf("land count = %d", g.LandCount())
	}
	if n := g.Neighbors(Point{X: 1, Y: 1}); len(n) != 3 {
		t.Fatalf("edge tile neighbours = %v", n)
	}
	if !(Point{X: 1, Y: 1}).Adjacent(Point{X: 1, Y: 0}) || (Point{X: 0, Y: 0}).Adjacent(Point{X: 1, Y: 1}) {
		t.Fatal("adjacency must be 4-connected")
	}

	c := g.Clone()
	c.At(2, 1).Balance = 9
	if g.At(2, 1).Balance != 0 {
		t.Fatal("clone must not alias the original")
	}
}
