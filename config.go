package overture

import (
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/teranos/overture/variant"
)

// EnvPrefix prefixes every environment variable Config reads.
const EnvPrefix = "OVERTURE_"

// Config controls one intro controller.
type Config struct {
	// SkipIntro is the caller's "already seen" signal.
	SkipIntro bool `env:"SKIP_INTRO"`
	// ReducedMotion suppresses the animation entirely.
	ReducedMotion bool `env:"REDUCED_MOTION"`
	// SoftSkipFactor multiplies the playback rate on a soft skip.
	SoftSkipFactor float64 `env:"SOFT_SKIP_FACTOR" envDefault:"8"`
	// SkipRevealDelay keeps the skip control hidden during the opening beat.
	SkipRevealDelay time.Duration `env:"SKIP_REVEAL_DELAY" envDefault:"500ms"`
	// FPS is the frame rate requested from the host.
	FPS int `env:"FPS" envDefault:"60"`
	// ProfilesPath optionally points at a YAML file of variant profiles.
	ProfilesPath string `env:"PROFILES"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		SoftSkipFactor:  8,
		SkipRevealDelay: 500 * time.Millisecond,
		FPS:             60,
	}
}

// ConfigFromEnv loads configuration from OVERTURE_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the controller cannot honour.
func (c Config) Validate() error {
	if !validFactor(c.SoftSkipFactor) {
		return fmt.Errorf("soft skip factor must be greater than 1, got %v", c.SoftSkipFactor)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.SkipRevealDelay < 0 {
		return fmt.Errorf("skip reveal delay must not be negative, got %v", c.SkipRevealDelay)
	}
	return nil
}

func validFactor(f float64) bool {
	return f > 1 && !math.IsInf(f, 1)
}

// withDefaults replaces every setting Validate would reject by its default
// and names the fields it replaced. Configs built in code never pass
// through ConfigFromEnv.
func (c Config) withDefaults() (Config, []string) {
	def := DefaultConfig()
	var fixed []string
	if !validFactor(c.SoftSkipFactor) {
		c.SoftSkipFactor = def.SoftSkipFactor
		fixed = append(fixed, "soft_skip_factor")
	}
	if c.FPS <= 0 {
		c.FPS = def.FPS
		fixed = append(fixed, "fps")
	}
	if c.SkipRevealDelay < 0 {
		c.SkipRevealDelay = def.SkipRevealDelay
		fixed = append(fixed, "skip_reveal_delay")
	}
	return c, fixed
}

// SkipEntirely is the single decision taken at mount.
func (c Config) SkipEntirely() bool {
	return c.SkipIntro || c.ReducedMotion
}

// FrameInterval is the time between host frames.
func (c Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FPS)
}

// Profiles loads ProfilesPath, or returns the built-in profiles when unset.
func (c Config) Profiles() (variant.Profiles, error) {
	if c.ProfilesPath == "" {
		return variant.DefaultProfiles(), nil
	}
	return variant.LoadProfiles(c.ProfilesPath)
}
