package engine

// PersistHeader is the fixed-layout header written ahead of the row-major
// array dump described in spec §6.3. Full save/load is a stated Non-goal;
// this type exists so a host embedding the engine has a documented,
// deterministic starting point for its own persistence layer, without the
// engine itself owning file I/O.
type PersistHeader struct {
	Magic    [4]byte
	Version  uint32
	Width    int32
	Height   int32
	Layers   int32
	Seed     int64
	Tick     int64
	Pool     WaterPool
	DayPhase DayPhase
}

// persistMagic identifies the on-disk format (spec §6.3).
var persistMagic = [4]byte{'O', 'A', 'S', 'I'}

const persistVersion = uint32(1)

// Header builds the persistence header for the current state. The
// row-major array bodies (bedrock_base, terrain_layers, ..., in the order
// listed in spec §6.3) follow this header in whatever container format
// the host chooses; the engine only commits to the header layout and the
// field order of the arrays that follow it.
func (s *State) Header() PersistHeader {
	return PersistHeader{
		Magic:    persistMagic,
		Version:  persistVersion,
		Width:    int32(s.W),
		Height:   int32(s.H),
		Layers:   int32(s.L),
		Seed:     s.seed,
		Tick:     s.Tick,
		Pool:     s.Pool,
		DayPhase: s.DayPhase,
	}
}

// ArrayOrder names the row-major arrays that follow the header, in the
// order a host must write or read them (spec §6.3).
func ArrayOrder() []string {
	return []string{
		"bedrock_base",
		"terrain_layers",
		"terrain_materials",
		"water_grid",
		"subsurface_water",
		"porosity",
		"permeability_vert",
		"permeability_horiz",
		"kind_grid",
		"wellspring",
		"humidity",
		"wind",
		"moisture",
		"water_passage",
		"wind_exposure",
		"structure_id",
	}
}
