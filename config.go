package orrery

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is the shared mutable configuration: the UI layer writes it, the
// core reads it once per frame. It is injected into every component at
// construction so the single-writer/single-reader contract stays explicit and
// the core is testable in isolation. All access happens on the frame-loop
// goroutine.
type Settings struct {
	VSOP87Dir string

	System System
	Plane  Plane

	// DistanceScale is the number of scene units per AU.
	DistanceScale float64
	// PlanetScale is the global display magnification of body meshes.
	PlanetScale float64

	OriginMode OriginMode
	// RebaseThreshold is the render-space camera distance beyond which a
	// periodic-mode rebase fires, in scene units.
	RebaseThreshold float64

	StartDate  time.Time
	ClockSpeed float64
}

// DefaultSettings returns a usable configuration: heliocentric ecliptic view,
// 100 scene units per AU, periodic rebasing at 1000 units, real-time clock.
func DefaultSettings() *Settings {
	return &Settings{
		System:          Heliocentric,
		Plane:           Ecliptic,
		DistanceScale:   100,
		PlanetScale:     1,
		OriginMode:      ModePeriodic,
		RebaseThreshold: 1000,
		StartDate:       time.Now().UTC(),
		ClockSpeed:      1,
	}
}

// LoadSettings reads conf.toml from the provided directory. Unset keys keep
// their defaults.
func LoadSettings(confPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s/conf.toml: %s", confPath, err)
	}

	cfg := DefaultSettings()
	cfg.VSOP87Dir = v.GetString("VSOP87.directory")

	if name := v.GetString("view.system"); name != "" {
		sys, err := SystemFromString(name)
		if err != nil {
			return nil, err
		}
		cfg.System = sys
	}
	if name := v.GetString("view.plane"); name != "" {
		plane, err := PlaneFromString(name)
		if err != nil {
			return nil, err
		}
		cfg.Plane = plane
	}
	if v.IsSet("view.distance_scale") {
		cfg.DistanceScale = v.GetFloat64("view.distance_scale")
	}
	if v.IsSet("view.planet_scale") {
		cfg.PlanetScale = v.GetFloat64("view.planet_scale")
	}
	if name := v.GetString("origin.mode"); name != "" {
		mode, err := OriginModeFromString(name)
		if err != nil {
			return nil, err
		}
		cfg.OriginMode = mode
	}
	if v.IsSet("origin.rebase_threshold") {
		cfg.RebaseThreshold = v.GetFloat64("origin.rebase_threshold")
	}
	if v.IsSet("clock.start") {
		cfg.StartDate = v.GetTime("clock.start").UTC()
	}
	if v.IsSet("clock.speed") {
		cfg.ClockSpeed = v.GetFloat64("clock.speed")
	}

	if cfg.DistanceScale <= 0 {
		return nil, fmt.Errorf("view.distance_scale must be positive, got %f", cfg.DistanceScale)
	}
	if cfg.RebaseThreshold <= 0 {
		return nil, fmt.Errorf("origin.rebase_threshold must be positive, got %f", cfg.RebaseThreshold)
	}
	return cfg, nil
}
