// Package config provides configuration loading and access for the
// terraforming engine.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Flow        FlowConfig        `yaml:"flow"`
	Subsurface  SubsurfaceConfig  `yaml:"subsurface"`
	Evaporation EvaporationConfig `yaml:"evaporation"`
	Atmosphere  AtmosphereConfig  `yaml:"atmosphere"`
	Erosion     ErosionConfig     `yaml:"erosion"`
	Biome       BiomeConfig       `yaml:"biome"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	WorldGen    WorldGenConfig    `yaml:"world_gen"`
	Structures  StructuresConfig  `yaml:"structures"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Milestones  MilestonesConfig  `yaml:"milestones"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and bedrock limits.
type WorldConfig struct {
	Width               int `yaml:"width"`
	Height              int `yaml:"height"`
	Layers              int `yaml:"layers"`
	MinBedrockElevation int `yaml:"min_bedrock_elevation"`
}

// FlowConfig holds surface-flow coefficients (spec §4.3).
type FlowConfig struct {
	Rate                float64 `yaml:"rate"`
	Threshold           float64 `yaml:"threshold"`
	DiagonalAttenuation float64 `yaml:"diagonal_attenuation"`
	SurfaceSeepageRate  float64 `yaml:"surface_seepage_rate"`
}

// SubsurfaceConfig holds layered subsurface-flow coefficients (spec §4.5).
type SubsurfaceConfig struct {
	HorizRate         float64 `yaml:"horiz_rate"`
	CapillaryRiseRate float64 `yaml:"capillary_rise_rate"`
	InjectionLayer    int     `yaml:"injection_layer"`
	RunEveryNTicks    int     `yaml:"run_every_n_ticks"`
}

// EvaporationConfig holds evaporation coefficients (spec §4.6).
type EvaporationConfig struct {
	WindFactor     float64 `yaml:"wind_factor"`
	ModifierLow    float64 `yaml:"modifier_low"`
	ModifierHigh   float64 `yaml:"modifier_high"`
	SoilBlendScale float64 `yaml:"soil_blend_scale"`
}

// AtmosphereConfig holds humidity/wind diffusion coefficients (spec §4.7)
// and the rain-event thresholds that route atmospheric water back to the
// grid (spec §4.2 water_pool.rain).
type AtmosphereConfig struct {
	BlurRadius    int     `yaml:"blur_radius"`
	HumidityDrift float64 `yaml:"humidity_drift"`
	HeatDryBias   float64 `yaml:"heat_dry_bias"`
	WindDrift     float64 `yaml:"wind_drift"`
	MaxWindSpeed  float64 `yaml:"max_wind_speed"`

	RainHumidityThreshold float64 `yaml:"rain_humidity_threshold"`
	RainAmountPerTick     int     `yaml:"rain_amount_per_tick"`
	RainHumidityDrawdown  float64 `yaml:"rain_humidity_drawdown"`
}

// ErosionConfig holds erosion thresholds (spec §4.8).
type ErosionConfig struct {
	ThresholdWater      float64 `yaml:"threshold_water"`
	ThresholdWind       float64 `yaml:"threshold_wind"`
	MaxTransportPerCell float64 `yaml:"max_transport_per_cell"`
	WindErosionEnabled  bool    `yaml:"wind_erosion_enabled"`
}

// BiomeConfig holds biome-reclassification coefficients (spec §4.9).
type BiomeConfig struct {
	MoistureEMAAlpha  float64 `yaml:"moisture_ema_alpha"`
	DuneMoistureMax   float64 `yaml:"dune_moisture_max"`
	WadiMoistureMin   float64 `yaml:"wadi_moisture_min"`
	SaltMoistureMin   float64 `yaml:"salt_moisture_min"`
	HighElevationPctl float64 `yaml:"high_elevation_percentile"`
	LowElevationPctl  float64 `yaml:"low_elevation_percentile"`
}

// SchedulerConfig holds tick/day timing (spec §5).
type SchedulerConfig struct {
	DayLengthTicks     int     `yaml:"day_length_ticks"`
	WindExposureEveryN int     `yaml:"wind_exposure_every_n_ticks"`
	HeatBaseline       float64 `yaml:"heat_baseline"`
	HeatAmplitude      float64 `yaml:"heat_amplitude"`
	EventLogCapacity   int     `yaml:"event_log_capacity"`
}

// WorldGenConfig holds world-generation parameters (spec §4.10).
type WorldGenConfig struct {
	BedrockNoiseScale   float64 `yaml:"bedrock_noise_scale"`
	BedrockAmplitude    float64 `yaml:"bedrock_amplitude"`
	BedrockSharpness    float64 `yaml:"bedrock_sharpness"`
	CoarseCellSize      int     `yaml:"coarse_cell_size"`
	MaxWFCRestarts      int     `yaml:"max_wfc_restarts"`
	InitialWaterPool    float64 `yaml:"initial_water_pool"`
	WellspringDensity   float64 `yaml:"wellspring_density"`
	WellspringMinOutput int     `yaml:"wellspring_min_output"`
	WellspringMaxOutput int     `yaml:"wellspring_max_output"`
}

// StructuresConfig holds structure behavior parameters (spec §4.12).
type StructuresConfig struct {
	CisternCapacity          int     `yaml:"cistern_capacity"`
	CisternEvapDamping       float64 `yaml:"cistern_evap_damping"`
	CondenserDrawPerTick     int     `yaml:"condenser_draw_per_tick"`
	PlanterMoistureThreshold float64 `yaml:"planter_moisture_threshold"`
	PlanterWaterBudget       int     `yaml:"planter_water_budget"`
	PlanterGrowthPerTick     int     `yaml:"planter_growth_per_tick"`
}

// TelemetryConfig holds telemetry window/history sizes.
type TelemetryConfig struct {
	WindowDurationTicks int `yaml:"window_duration_ticks"`
	MilestoneHistory    int `yaml:"milestone_history"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// MilestonesConfig holds milestone detection thresholds (telemetry).
type MilestonesConfig struct {
	FloodSurge         FloodSurgeConfig         `yaml:"flood_surge"`
	DroughtOnset       DroughtOnsetConfig       `yaml:"drought_onset"`
	OasisStable        OasisStableConfig        `yaml:"oasis_stable"`
	WellspringRecovery WellspringRecoveryConfig `yaml:"wellspring_recovery"`
	ErosionSurge       ErosionSurgeConfig       `yaml:"erosion_surge"`
}

// FloodSurgeConfig holds flood-surge detection parameters: surface water
// spiking well above its rolling average.
type FloodSurgeConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinSurge   int64   `yaml:"min_surge"`
}

// DroughtOnsetConfig holds drought-onset detection parameters: surface
// water dropping sharply from a recent peak.
type DroughtOnsetConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int64   `yaml:"min_drop"`
}

// OasisStableConfig holds stable-oasis detection parameters: a Wadi biome
// persisting with low moisture variance over consecutive windows.
type OasisStableConfig struct {
	MinWadiCells  int     `yaml:"min_wadi_cells"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// WellspringRecoveryConfig holds wellspring-recovery detection parameters:
// the free water pool recovering after running critically low.
type WellspringRecoveryConfig struct {
	MinPoolFloor       int64 `yaml:"min_pool_floor"`
	RecoveryMultiplier int64 `yaml:"recovery_multiplier"`
	MinFinal           int64 `yaml:"min_final"`
}

// ErosionSurgeConfig holds erosion-surge detection parameters: a window's
// erosion event count spiking above its rolling average.
type ErosionSurgeConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinEvents  int     `yaml:"min_events"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DiagonalAttenuation float64 // resolved default of FlowConfig.DiagonalAttenuation
	InvSqrt2            float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// WriteYAML writes the config to a file, used by telemetry run snapshots.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	attenuation := c.Flow.DiagonalAttenuation
	if attenuation <= 0 {
		attenuation = 1 / math.Sqrt2
	}
	c.Derived.DiagonalAttenuation = attenuation
	c.Derived.InvSqrt2 = 1 / math.Sqrt2
}
