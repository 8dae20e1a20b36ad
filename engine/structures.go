package engine

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// StructureKind identifies which of the four placeable structures an
// entity is (spec §4.12).
type StructureKind uint8

const (
	StructureCistern StructureKind = iota
	StructureCondenser
	StructurePlanter
	StructureDepot
)

func (k StructureKind) String() string {
	switch k {
	case StructureCistern:
		return "Cistern"
	case StructureCondenser:
		return "Condenser"
	case StructurePlanter:
		return "Planter"
	case StructureDepot:
		return "Depot"
	default:
		return "Unknown"
	}
}

// structurePosition is the grid cell a structure entity occupies.
type structurePosition struct {
	X, Y int32
}

// structureKindComp tags an entity with its StructureKind.
type structureKindComp struct {
	Kind StructureKind
}

// structureCapabilityComp carries the bitflags that gate how a structure
// participates in water accounting (capability.go).
type structureCapabilityComp struct {
	Caps StructureCapability
}

// structureStore is a generic scalar reservoir: Cisterns store collected
// water against Capacity; Planters spend down a one-shot water budget
// against the same fields; Condensers and Depots leave it zeroed.
type structureStore struct {
	Amount   int32
	Capacity int32
}

// structureGrowth tracks a Planter's accumulated growth (spec §4.12).
type structureGrowth struct {
	Progress int32
}

// structureWorld is the ECS world backing the sparse, identity-bearing
// structures, kept separate from State's dense per-cell grids (spec §9:
// structures are "entity per actor", everything else is dense array).
// Adapted from the teacher's entity-mapper/filter pattern in game/game.go.
type structureWorld struct {
	world *ecs.World

	posMap       *ecs.Map1[structurePosition]
	kindMap      *ecs.Map1[structureKindComp]
	capMap       *ecs.Map1[structureCapabilityComp]
	storeMap     *ecs.Map1[structureStore]
	growthMap    *ecs.Map1[structureGrowth]
	entityMap    *ecs.Map5[structurePosition, structureKindComp, structureCapabilityComp, structureStore, structureGrowth]
	entityFilter *ecs.Filter5[structurePosition, structureKindComp, structureCapabilityComp, structureStore, structureGrowth]

	byID   map[int32]ecs.Entity
	nextID int32
}

func newStructureWorld() *structureWorld {
	world := ecs.NewWorld()
	return &structureWorld{
		world: world,

		posMap:       ecs.NewMap1[structurePosition](world),
		kindMap:      ecs.NewMap1[structureKindComp](world),
		capMap:       ecs.NewMap1[structureCapabilityComp](world),
		storeMap:     ecs.NewMap1[structureStore](world),
		growthMap:    ecs.NewMap1[structureGrowth](world),
		entityMap:    ecs.NewMap5[structurePosition, structureKindComp, structureCapabilityComp, structureStore, structureGrowth](world),
		entityFilter: ecs.NewFilter5[structurePosition, structureKindComp, structureCapabilityComp, structureStore, structureGrowth](world),

		byID: make(map[int32]ecs.Entity),
	}
}

func capabilitiesFor(kind StructureKind) StructureCapability {
	switch kind {
	case StructureCistern:
		return CapStoresWater | CapDampensEvaporation
	case StructureCondenser:
		return CapDrawsAtmospheric
	case StructurePlanter:
		return CapConsumesWaterBudget | CapGrowsOrganics
	case StructureDepot:
		return CapExcludedFromConservation
	default:
		return 0
	}
}

func storeFor(cfg *State, kind StructureKind) structureStore {
	c := cfg.cfg.Structures
	switch kind {
	case StructureCistern:
		return structureStore{Amount: 0, Capacity: int32(c.CisternCapacity)}
	case StructurePlanter:
		return structureStore{Amount: int32(c.PlanterWaterBudget), Capacity: int32(c.PlanterWaterBudget)}
	default:
		return structureStore{}
	}
}

// Build places a structure of the given kind at (x,y) (spec §4.12). Fails
// if the cell is occupied or out of bounds.
func (s *State) Build(kind StructureKind, x, y int) ActionResult {
	if r := s.validateCell(x, y); !r.Ok() {
		return r
	}
	i2 := s.Idx2(x, y)
	if s.StructureID[i2] != -1 {
		return fail("cell already holds a structure")
	}

	sw := s.structures
	id := sw.nextID
	sw.nextID++

	pos := structurePosition{X: int32(x), Y: int32(y)}
	k := structureKindComp{Kind: kind}
	caps := structureCapabilityComp{Caps: capabilitiesFor(kind)}
	store := storeFor(s, kind)
	growth := structureGrowth{}

	entity := sw.entityMap.NewEntity(&pos, &k, &caps, &store, &growth)
	sw.byID[id] = entity

	s.StructureID[i2] = id
	s.MarkDirty(x, y)
	s.events.PushCell(s.Tick, EventStructureBuilt, x, y, 0, kind.String())
	return ok(fmt.Sprintf("built %s", kind))
}

// Demolish removes the structure occupying (x,y), if any (spec §4.12).
func (s *State) Demolish(x, y int) ActionResult {
	if r := s.validateCell(x, y); !r.Ok() {
		return r
	}
	i2 := s.Idx2(x, y)
	id := s.StructureID[i2]
	if id == -1 {
		return fail("no structure at this cell")
	}
	sw := s.structures
	entity, found := sw.byID[id]
	if found {
		sw.entityMap.Remove(entity)
		delete(sw.byID, id)
	}
	s.StructureID[i2] = -1
	s.MarkDirty(x, y)
	s.events.PushCell(s.Tick, EventStructureDemolished, x, y, 0, "demolished")
	return ok("demolished structure")
}

// Structures advances every placed structure by one tick (spec §4.12):
// Cisterns collect surface water up to capacity and dampen evaporation
// beneath them; Condensers draw directly from the atmospheric reserve;
// Planters consume their water budget to grow Organics depth or die when
// the growth condition fails; Depots sink water unconditionally, excluded
// from mass-conservation accounting.
func Structures(s *State) {
	cfg := s.cfg.Structures
	var died []int32

	query := s.structures.entityFilter.Query()
	for query.Next() {
		pos, kind, _, store, growth := query.Get()
		x, y := int(pos.X), int(pos.Y)
		i2 := s.Idx2(x, y)

		switch kind.Kind {
		case StructureCistern:
			surface := s.WaterGrid[i2]
			if surface > 0 && store.Amount < store.Capacity {
				room := store.Capacity - store.Amount
				take := surface
				if take > room {
					take = room
				}
				store.Amount += take
				s.WaterGrid[i2] -= take
			}
		case StructureCondenser:
			drawn := int32(s.Pool.DrawAtmospheric(int64(cfg.CondenserDrawPerTick)))
			if drawn > 0 {
				s.WaterGrid[i2] += drawn
				s.MarkDirty(x, y)
			}
		case StructurePlanter:
			if float64(s.Moisture[i2]) >= cfg.PlanterMoistureThreshold && store.Amount > 0 {
				spend := int32(cfg.PlanterGrowthPerTick)
				if spend > store.Amount {
					spend = store.Amount
				}
				store.Amount -= spend
				growth.Progress += spend

				i3 := s.Idx3(Organics, x, y)
				if s.TerrainLayers[i3] == 0 {
					s.TerrainMaterials[i3] = defaultMaterial(Organics)
				}
				s.TerrainLayers[i3] += spend
				s.MarkTerrainChanged()
				s.MarkDirty(x, y)
			} else {
				died = append(died, s.StructureID[i2])
			}
		case StructureDepot:
			if s.WaterGrid[i2] > 0 {
				// Depots sink water outside the closed system (spec §4.12
				// "excluded from mass-conservation"); not routed to Pool.
				s.WaterGrid[i2] = 0
			}
		}
	}

	sw := s.structures
	for _, id := range died {
		entity, found := sw.byID[id]
		if !found {
			continue
		}
		pos := sw.posMap.Get(entity)
		x, y := int(pos.X), int(pos.Y)
		sw.entityMap.Remove(entity)
		delete(sw.byID, id)
		s.StructureID[s.Idx2(x, y)] = -1
		s.MarkDirty(x, y)
		s.events.PushCell(s.Tick, EventStructureDemolished, x, y, 0, "planter died")
	}
}

// CisternEvaporationDamping returns the evaporation multiplier to apply at
// (x,y) given any Cistern occupying it (spec §4.12, §4.6). 1.0 if no
// dampening structure is present.
func (s *State) CisternEvaporationDamping(x, y int) float64 {
	id := s.StructureID[s.Idx2(x, y)]
	if id == -1 {
		return 1.0
	}
	entity, found := s.structures.byID[id]
	if !found {
		return 1.0
	}
	caps := s.structures.capMap.Get(entity)
	if caps.Caps.Has(CapDampensEvaporation) {
		return s.cfg.Structures.CisternEvapDamping
	}
	return 1.0
}
