package physics

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config is the full set of World configuration options enumerated in
// spec.md S6. Every tunable the solver, narrow-phase, and sleep heuristic
// need is here rather than hard-coded, per the source's own open question
// about its motion-smoothing bias and sleep dwell length never having been
// promoted to configuration.
type Config struct {
	MaxSubSteps int        `yaml:"maxSubSteps"`
	FixedDt     float64    `yaml:"fixedDt"`
	Gravity     mgl64.Vec3 `yaml:"gravity"`

	MaxSolverIterations int     `yaml:"maxSolverIterations"`
	ContactSeparation   float64 `yaml:"contactSeparation"`
	ContactPrecision    float64 `yaml:"contactPrecision"`

	EPAMinFaceDelta  float64 `yaml:"epaMinFaceDelta"`
	EPAMaxIterations int     `yaml:"epaMaxIterations"`

	GJKEpsilon       float64 `yaml:"gjkEpsilon"`
	GJKMaxIterations int     `yaml:"gjkMaxIterations"`

	SleepMotionThreshold float64 `yaml:"sleepMotionThreshold"`
	SleepMotionBias      float64 `yaml:"sleepMotionBias"`
	SleepTimeThreshold   float64 `yaml:"sleepTimeThreshold"`

	Baumgarte        float64 `yaml:"baumgarte"`
	RestitutionSlop  float64 `yaml:"restitutionSlop"`
	PenetrationSlop  float64 `yaml:"penetrationSlop"`

	// Workers is ambient (not named by spec.md S6, which only enumerates
	// solver/numerical tunables) but carried over from the teacher's
	// DEFAULT_WORKERS knob - the chunked-goroutine fan-out width for the
	// velocity/position integration passes. 1 keeps the default step single-
	// threaded per spec.md S5.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the tuning used when a World is constructed without
// an explicit Config: 16 PGS iterations (grounded on the original engine's
// sMaxIterations), a 1/60s fixed step with no sub-stepping, Earth gravity,
// and the epsilon/slop defaults already used throughout gjk/epa/manifold.
func DefaultConfig() Config {
	return Config{
		MaxSubSteps:          1,
		FixedDt:              1.0 / 60.0,
		Gravity:              mgl64.Vec3{0, -9.8, 0},
		MaxSolverIterations:  16,
		ContactSeparation:    0.02,
		ContactPrecision:     1e-4,
		EPAMinFaceDelta:      0.0001,
		EPAMaxIterations:     32,
		GJKEpsilon:           1e-6,
		GJKMaxIterations:     32,
		SleepMotionThreshold: 0.05,
		SleepMotionBias:      0.9,
		SleepTimeThreshold:   0.1,
		Baumgarte:            0.2,
		RestitutionSlop:      0.5,
		PenetrationSlop:      0.005,
		Workers:              1,
	}
}

// LoadConfig reads a YAML document into a Config seeded from DefaultConfig,
// so a partial document only overrides the fields it sets.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, newError(InvalidArgument, "LoadConfig", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive epsilons, iteration caps, and other
// configuration values the solver/narrow-phase cannot tolerate, raising
// InvalidArgument per spec.md S7.
func (c Config) Validate() error {
	type check struct {
		name string
		ok   bool
	}
	checks := []check{
		{"maxSubSteps", c.MaxSubSteps > 0},
		{"fixedDt", c.FixedDt > 0},
		{"maxSolverIterations", c.MaxSolverIterations > 0},
		{"contactSeparation", c.ContactSeparation > 0},
		{"contactPrecision", c.ContactPrecision > 0},
		{"epaMinFaceDelta", c.EPAMinFaceDelta > 0},
		{"epaMaxIterations", c.EPAMaxIterations > 0},
		{"gjkEpsilon", c.GJKEpsilon > 0},
		{"gjkMaxIterations", c.GJKMaxIterations > 0},
		{"sleepMotionThreshold", c.SleepMotionThreshold > 0},
		{"sleepMotionBias", c.SleepMotionBias >= 0 && c.SleepMotionBias <= 1},
		{"sleepTimeThreshold", c.SleepTimeThreshold >= 0},
		{"baumgarte", c.Baumgarte >= 0 && c.Baumgarte <= 1},
		{"restitutionSlop", c.RestitutionSlop >= 0},
		{"penetrationSlop", c.PenetrationSlop >= 0},
		{"workers", c.Workers > 0},
	}
	for _, chk := range checks {
		if !chk.ok {
			return newError(InvalidArgument, "Config.Validate", fmt.Errorf("%s out of range: %v", chk.name, fieldValue(c, chk.name)))
		}
	}
	return nil
}

func fieldValue(c Config, name string) any {
	switch name {
	case "maxSubSteps":
		return c.MaxSubSteps
	case "fixedDt":
		return c.FixedDt
	case "maxSolverIterations":
		return c.MaxSolverIterations
	case "contactSeparation":
		return c.ContactSeparation
	case "contactPrecision":
		return c.ContactPrecision
	case "epaMinFaceDelta":
		return c.EPAMinFaceDelta
	case "epaMaxIterations":
		return c.EPAMaxIterations
	case "gjkEpsilon":
		return c.GJKEpsilon
	case "gjkMaxIterations":
		return c.GJKMaxIterations
	case "sleepMotionThreshold":
		return c.SleepMotionThreshold
	case "sleepMotionBias":
		return c.SleepMotionBias
	case "sleepTimeThreshold":
		return c.SleepTimeThreshold
	case "baumgarte":
		return c.Baumgarte
	case "restitutionSlop":
		return c.RestitutionSlop
	case "penetrationSlop":
		return c.PenetrationSlop
	case "workers":
		return c.Workers
	default:
		return nil
	}
}
