package engine

// View is a read-only snapshot of a State, handed across the host
// boundary so a renderer or inspector cannot mutate simulation state
// directly (spec §6.1, §9 "no hidden singletons, explicit boundary").
type View struct {
	s *State
}

// Snapshot returns a read-only View over the current state. The View
// aliases the underlying slices; callers must not retain it across a
// Scheduler.Tick call.
func (s *State) Snapshot() View { return View{s: s} }

func (v View) Width() int  { return v.s.W }
func (v View) Height() int { return v.s.H }
func (v View) Layers() int { return v.s.L }

func (v View) Tick() int64         { return v.s.Tick }
func (v View) DayPhase() DayPhase  { return v.s.DayPhase }
func (v View) Heat() float64       { return v.s.Heat }

func (v View) Elevation(x, y int) int32    { return v.s.TotalElevation(x, y) }
func (v View) SurfaceWater(x, y int) int32 { return v.s.WaterGrid[v.s.Idx2(x, y)] }
func (v View) Biome(x, y int) Biome        { return v.s.KindGrid[v.s.Idx2(x, y)] }
func (v View) Humidity(x, y int) float32   { return v.s.Humidity[v.s.Idx2(x, y)] }
func (v View) Moisture(x, y int) float32   { return v.s.Moisture[v.s.Idx2(x, y)] }
func (v View) Wind(x, y int) (float32, float32) {
	i2 := v.s.Idx2(x, y)
	return v.s.Wind[i2*2], v.s.Wind[i2*2+1]
}
func (v View) StructureID(x, y int) int32 { return v.s.StructureID[v.s.Idx2(x, y)] }

// LayerDepth and LayerMaterial expose per-layer terrain composition.
func (v View) LayerDepth(l Layer, x, y int) int32 { return v.s.TerrainLayers[v.s.Idx3(l, x, y)] }
func (v View) LayerMaterial(l Layer, x, y int) Material {
	return v.s.TerrainMaterials[v.s.Idx3(l, x, y)]
}
func (v View) LayerWater(l Layer, x, y int) int32 { return v.s.SubsurfaceWater[v.s.Idx3(l, x, y)] }

// WaterPoolSnapshot returns the current scalar water-pool accumulators.
func (v View) WaterPoolSnapshot() WaterPool { return v.s.Pool }

// Events returns the event log (read-only by convention; callers should
// only call Recent/All/Len on it).
func (v View) Events() *EventLog { return v.s.events }

// DirtyCells returns and clears the accumulated render-invalidation set.
func (v View) DirtyCells() [][2]int { return v.s.TakeDirty() }
