package engine

import "slices"

// Standing is one row of the leaderboard.
type Standing struct {
	ID       NationID `json:"id" db:"nation_id"`
	Name     string   `json:"name" db:"name"`
	Tiles    int      `json:"tiles" db:"tiles"`
	Treasury float64  `json:"treasury" db:"treasury"`
	Strength float64  `json:"strength" db:"strength"`
	Alive    bool     `json:"alive" db:"alive"`
}

// Standings ranks nations by owned tiles, then by id.
func Standings(s *WorldState) []Standing {
	out := make([]Standing, 0, len(s.Nations))
	for _, n := range s.Nations {
		out = append(out, Standing{
			ID:       n.ID,
			Name:     n.Name,
			Tiles:    n.Tiles,
			Treasury: n.Treasury,
			Strength: n.Strength,
			Alive:    n.Alive,
		})
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		return b.Tiles - a.Tiles
	})
	return out
}
