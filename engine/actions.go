package engine

import "fmt"

// ActionStatus is the outcome variant of a player action (spec §7: "two
// variant result (Ok(status) / Fail(reason))").
type ActionStatus uint8

const (
	ActionOK ActionStatus = iota
	ActionFail
)

// ActionResult is returned by every PlayerActions entry point. Internal
// subsystems never fail outward; only action entry points produce this
// two-variant result, and the host renders Message verbatim on failure
// (spec §7 Propagation).
type ActionResult struct {
	Status  ActionStatus
	Message string
}

func ok(msg string) ActionResult   { return ActionResult{Status: ActionOK, Message: msg} }
func fail(msg string) ActionResult { return ActionResult{Status: ActionFail, Message: msg} }

// Ok reports whether the result succeeded.
func (r ActionResult) Ok() bool { return r.Status == ActionOK }

// TrenchMode selects the elevation profile dig_trench realizes along its
// strip (spec §4.11).
type TrenchMode uint8

const (
	TrenchFlat TrenchMode = iota
	TrenchSlopeDown
	TrenchSlopeUp
)

// Direction is one of the four cardinal directions used by dig_trench.
type Direction struct{ DX, DY int }

var (
	DirEast  = Direction{1, 0}
	DirWest  = Direction{-1, 0}
	DirNorth = Direction{0, -1}
	DirSouth = Direction{0, 1}
)

func (d Direction) perpendicular() Direction {
	return Direction{DX: -d.DY, DY: d.DX}
}

// validateCell checks bounds, a shared precondition of every action that
// addresses a single cell (spec §7 Invalid-argument).
func (s *State) validateCell(x, y int) ActionResult {
	if !s.InBounds(x, y) {
		return fail(fmt.Sprintf("cell (%d,%d) is out of bounds", x, y))
	}
	return ok("")
}

// DigTrench removes a volume of material along a short strip starting at
// origin and running length cells in direction, redistributing the
// removed volume to the strip's perpendicular neighbors so that total
// material is conserved (spec §4.11, §8 property 8 / scenario S5).
func (s *State) DigTrench(origin [2]int, dir Direction, length int, mode TrenchMode) ActionResult {
	if r := s.validateCell(origin[0], origin[1]); !r.Ok() {
		return r
	}
	if length < 1 {
		return fail("trench length must be positive")
	}
	perp := dir.perpendicular()

	strip := make([][2]int, 0, length)
	for i := 0; i < length; i++ {
		x := origin[0] + dir.DX*i
		y := origin[1] + dir.DY*i
		if !s.InBounds(x, y) {
			return fail("trench exits the grid")
		}
		strip = append(strip, [2]int{x, y})
	}

	targets := make([]int32, length)
	originElev := s.TotalElevation(origin[0], origin[1])
	switch mode {
	case TrenchFlat:
		for i := range targets {
			targets[i] = originElev
		}
	case TrenchSlopeDown:
		for i := range targets {
			step := int32(i) * 2
			targets[i] = originElev - step
			if targets[i] < int32(s.cfg.World.MinBedrockElevation) {
				targets[i] = int32(s.cfg.World.MinBedrockElevation)
			}
		}
	case TrenchSlopeUp:
		for i := range targets {
			targets[i] = originElev + int32(i)*2
		}
	}

	var removedTotal int32
	removals := make([]int32, length)
	for i, c := range strip {
		cur := s.TotalElevation(c[0], c[1])
		delta := cur - targets[i]
		if mode == TrenchSlopeUp {
			// SlopeUp never removes below the origin level; only excess
			// above target is trimmed, deposits raise the exit instead.
			if delta < 0 {
				delta = 0
			}
		}
		if delta > 0 {
			removed := s.removeTopMaterial(c[0], c[1], delta)
			removals[i] = removed
			removedTotal += removed
		}
	}

	if removedTotal > 0 {
		s.distributeToSides(strip, perp, removals, removedTotal, mode)
	}

	s.MarkTerrainChanged()
	for _, c := range strip {
		s.MarkDirty(c[0], c[1])
	}
	s.RebuildElevation()
	return ok(fmt.Sprintf("dug trench of %d cells, moved %d units", length, removedTotal))
}

// distributeToSides splits each strip cell's removal between its two
// perpendicular neighbors, the odd unit going to the first side
// (Flat/SlopeDown; SlopeUp instead raises the exit cell). A side outside
// the grid passes its share to the other side; with neither side inside
// the grid the share goes back onto the strip cell.
func (s *State) distributeToSides(strip []([2]int), perp Direction, removals []int32, removedTotal int32, mode TrenchMode) {
	if mode == TrenchSlopeUp {
		// Raise the exit cell with the saved material.
		exit := strip[len(strip)-1]
		s.addTopMaterial(exit[0], exit[1], removedTotal)
		s.MarkDirty(exit[0], exit[1])
		return
	}
	for i, c := range strip {
		share := removals[i]
		if share <= 0 {
			continue
		}
		half := share / 2
		rem := share - half*2
		sideA := [2]int{c[0] + perp.DX, c[1] + perp.DY}
		sideB := [2]int{c[0] - perp.DX, c[1] - perp.DY}
		inA := s.InBounds(sideA[0], sideA[1])
		inB := s.InBounds(sideB[0], sideB[1])
		switch {
		case inA && inB:
			s.addTopMaterial(sideA[0], sideA[1], half+rem)
			s.addTopMaterial(sideB[0], sideB[1], half)
		case inA:
			s.addTopMaterial(sideA[0], sideA[1], share)
		case inB:
			s.addTopMaterial(sideB[0], sideB[1], share)
		default:
			s.addTopMaterial(c[0], c[1], share)
		}
		if inA {
			s.MarkDirty(sideA[0], sideA[1])
		}
		if inB {
			s.MarkDirty(sideB[0], sideB[1])
		}
	}
}

// removeTopMaterial removes up to amount units of elevation from the
// topmost non-empty layer(s) at (x,y), returning the amount actually
// removed. It descends through layers once the current one is exhausted,
// never crossing the bedrock floor.
func (s *State) removeTopMaterial(x, y int, amount int32) int32 {
	removed := int32(0)
	for amount > 0 {
		l, ok := s.topmostNonEmpty(x, y)
		if !ok {
			break
		}
		i3 := s.Idx3(l, x, y)
		depth := s.TerrainLayers[i3]
		take := amount
		if take > depth {
			take = depth
		}
		s.TerrainLayers[i3] -= take
		if s.TerrainLayers[i3] == 0 {
			s.TerrainMaterials[i3] = MaterialEmpty
		}
		removed += take
		amount -= take
	}
	return removed
}

// addTopMaterial deposits amount units of elevation onto the topmost
// non-empty layer at (x,y), defaulting its material if the cell was bare
// (spec §4.11 "defaulted when a layer becomes non-empty").
func (s *State) addTopMaterial(x, y int, amount int32) {
	if amount <= 0 {
		return
	}
	l, ok := s.topmostNonEmpty(x, y)
	if !ok {
		l = Topsoil
	}
	i3 := s.Idx3(l, x, y)
	if s.TerrainLayers[i3] == 0 {
		s.TerrainMaterials[i3] = defaultMaterial(l)
	}
	s.TerrainLayers[i3] += amount
}

// LowerGround shifts one unit from the topmost non-empty layer (or from
// Bedrock, respecting the floor) at (x,y) (spec §4.11).
func (s *State) LowerGround(x, y int) ActionResult {
	if r := s.validateCell(x, y); !r.Ok() {
		return r
	}
	l, has := s.topmostNonEmpty(x, y)
	if has {
		i3 := s.Idx3(l, x, y)
		s.TerrainLayers[i3]--
		if s.TerrainLayers[i3] == 0 {
			s.TerrainMaterials[i3] = MaterialEmpty
		}
	} else {
		i2 := s.Idx2(x, y)
		if s.BedrockBase[i2] <= int32(s.cfg.World.MinBedrockElevation) {
			return fail("bedrock is already at the floor")
		}
		s.BedrockBase[i2]--
	}
	s.MarkTerrainChanged()
	s.MarkDirty(x, y)
	s.RebuildElevation()
	return ok("lowered ground")
}

// RaiseGround shifts one unit onto the topmost non-empty layer (or starts
// a new Topsoil layer on bare bedrock) at (x,y) (spec §4.11).
func (s *State) RaiseGround(x, y int) ActionResult {
	if r := s.validateCell(x, y); !r.Ok() {
		return r
	}
	s.addTopMaterial(x, y, 1)
	s.MarkTerrainChanged()
	s.MarkDirty(x, y)
	s.RebuildElevation()
	return ok("raised ground")
}

// PourWater moves amount units of inventory water onto water_grid(x,y)
// (spec §4.11).
func (s *State) PourWater(x, y int, amount int32) ActionResult {
	if r := s.validateCell(x, y); !r.Ok() {
		return r
	}
	if amount < 0 {
		return fail("amount must be non-negative")
	}
	s.WaterGrid[s.Idx2(x, y)] += amount
	s.MarkDirty(x, y)
	return ok(fmt.Sprintf("poured %d water", amount))
}

// CollectWater moves up to amount units from water_grid(x,y) into
// inventory, returning the amount actually collected (spec §4.11).
func (s *State) CollectWater(x, y int, amount int32) (ActionResult, int32) {
	if r := s.validateCell(x, y); !r.Ok() {
		return r, 0
	}
	if amount < 0 {
		return fail("amount must be non-negative"), 0
	}
	i2 := s.Idx2(x, y)
	take := amount
	if take > s.WaterGrid[i2] {
		take = s.WaterGrid[i2]
	}
	s.WaterGrid[i2] -= take
	s.MarkDirty(x, y)
	return ok(fmt.Sprintf("collected %d water", take)), take
}

// SurveyResult is the read-only snapshot returned by Survey (spec §4.11:
// "never mutates state").
type SurveyResult struct {
	Biome           Biome
	SurfaceWater    int32
	LayerDepths     [NumLayers]int32
	LayerMaterials  [NumLayers]Material
	LayerWater      [NumLayers]int32
	Elevation       int32
	StructureID     int32
}

// Survey returns a read-only snapshot of a cell (spec §4.11, §8 property 7:
// idempotent, never mutates).
func (s *State) Survey(x, y int) (SurveyResult, ActionResult) {
	if r := s.validateCell(x, y); !r.Ok() {
		return SurveyResult{}, r
	}
	i2 := s.Idx2(x, y)
	res := SurveyResult{
		Biome:        s.KindGrid[i2],
		SurfaceWater: s.WaterGrid[i2],
		Elevation:    s.ElevationGrid[i2],
		StructureID:  s.StructureID[i2],
	}
	for l := 0; l < s.L; l++ {
		i3 := s.Idx3(Layer(l), x, y)
		res.LayerDepths[l] = s.TerrainLayers[i3]
		res.LayerMaterials[l] = s.TerrainMaterials[i3]
		res.LayerWater[l] = s.SubsurfaceWater[i3]
	}
	return res, ok("survey complete")
}
