package engine

// SubsystemInfo describes one tick-dispatched subsystem, so the scheduler,
// the perf collector and the event log all refer to it by the same name
// (adapted from the teacher's SystemRegistry in systems/registry.go).
type SubsystemInfo struct {
	ID          string
	Name        string
	Description string
	Category    string
}

// SubsystemRegistry holds metadata about every subsystem the scheduler can
// dispatch to (spec §5 phase table).
type SubsystemRegistry struct {
	subsystems []SubsystemInfo
	byID       map[string]SubsystemInfo
}

// NewSubsystemRegistry creates a registry populated with every subsystem
// named in the tick phase table.
func NewSubsystemRegistry() *SubsystemRegistry {
	r := &SubsystemRegistry{byID: make(map[string]SubsystemInfo)}
	r.registerDefaults()
	return r
}

func (r *SubsystemRegistry) registerDefaults() {
	r.Register(SubsystemInfo{ID: "surface_flow", Name: "Surface Flow", Description: "Redistributes surface water across 8-neighborhoods", Category: "hydrology"})
	r.Register(SubsystemInfo{ID: "seepage", Name: "Seepage", Description: "Moves surface water into the topmost soil layer", Category: "hydrology"})
	r.Register(SubsystemInfo{ID: "subsurface_flow", Name: "Subsurface Flow", Description: "Layered vertical and horizontal groundwater transfer", Category: "hydrology"})
	r.Register(SubsystemInfo{ID: "evaporation", Name: "Evaporation", Description: "Moves water from grid to the atmospheric reserve", Category: "hydrology"})
	r.Register(SubsystemInfo{ID: "atmosphere", Name: "Atmosphere", Description: "Diffuses humidity and wind", Category: "environment"})
	r.Register(SubsystemInfo{ID: "rain", Name: "Rain", Description: "Routes built-up humidity back to the grid as surface water", Category: "environment"})
	r.Register(SubsystemInfo{ID: "moisture_ema", Name: "Moisture EMA", Description: "Updates the moisture exponential moving average", Category: "environment"})
	r.Register(SubsystemInfo{ID: "erosion", Name: "Erosion", Description: "Transports material along water and wind accumulators", Category: "terrain"})
	r.Register(SubsystemInfo{ID: "biomes", Name: "Biomes", Description: "Reclassifies cells from elevation and moisture", Category: "terrain"})
	r.Register(SubsystemInfo{ID: "structures", Name: "Structures", Description: "Advances placed structures", Category: "actors"})
	r.Register(SubsystemInfo{ID: "wind_exposure", Name: "Wind Exposure", Description: "Accumulates per-cell wind exposure for erosion", Category: "terrain"})
}

// Register adds a subsystem to the registry.
func (r *SubsystemRegistry) Register(info SubsystemInfo) {
	r.subsystems = append(r.subsystems, info)
	r.byID[info.ID] = info
}

// Get returns subsystem info by ID.
func (r *SubsystemRegistry) Get(id string) (SubsystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a subsystem ID, falling back to
// the ID itself.
func (r *SubsystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns every registered subsystem in registration order.
func (r *SubsystemRegistry) All() []SubsystemInfo {
	return r.subsystems
}
