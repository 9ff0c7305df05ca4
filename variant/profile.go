package variant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Key names a parameter profile.
type Key int

const (
	Desktop Key = iota
	Mobile
)

func (k Key) String() string {
	switch k {
	case Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// Profile is a fully-resolved parameter set for one viewport class.
// Durations are in seconds, travel distances in terminal cells.
type Profile struct {
	LogoScaleFrom       float64 `yaml:"logo_scale_from"`
	EntranceDuration    float64 `yaml:"entrance_duration"`
	CaptionCharDuration float64 `yaml:"caption_char_duration"`
	CaptionGap          float64 `yaml:"caption_gap"`
	CursorBlink         float64 `yaml:"cursor_blink"`
	Lines               int     `yaml:"lines"`
	LineWidth           int     `yaml:"line_width"`
	LineRevealDuration  float64 `yaml:"line_reveal_duration"`
	LineStagger         float64 `yaml:"line_stagger"`
	Particles           int     `yaml:"particles"`
	ExplosionTravelX    float64 `yaml:"explosion_travel_x"`
	ExplosionTravelY    float64 `yaml:"explosion_travel_y"`
	ExplosionScale      float64 `yaml:"explosion_scale"`
	ExplosionDuration   float64 `yaml:"explosion_duration"`
	FadeDuration        float64 `yaml:"fade_duration"`
}

// Validate rejects profiles the sequence builder cannot use.
func (p Profile) Validate() error {
	for name, v := range map[string]float64{
		"entrance_duration":     p.EntranceDuration,
		"caption_char_duration": p.CaptionCharDuration,
		"cursor_blink":          p.CursorBlink,
		"line_reveal_duration":  p.LineRevealDuration,
		"explosion_duration":    p.ExplosionDuration,
		"fade_duration":         p.FadeDuration,
		"explosion_scale":       p.ExplosionScale,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	if p.CaptionGap < 0 || p.LineStagger < 0 || p.LogoScaleFrom < 0 {
		return fmt.Errorf("caption_gap, line_stagger and logo_scale_from must not be negative")
	}
	if p.Lines < 0 || p.LineWidth < 0 || p.Particles < 0 {
		return fmt.Errorf("lines, line_width and particles must not be negative")
	}
	return nil
}

// Profiles holds both variants and the width that separates them.
type Profiles struct {
	// Breakpoint is the terminal width, in cells, below which Mobile is used.
	Breakpoint int     `yaml:"breakpoint"`
	Mobile     Profile `yaml:"mobile"`
	Desktop    Profile `yaml:"desktop"`
}

// For returns the profile for a key.
func (p Profiles) For(k Key) Profile {
	if k == Mobile {
		return p.Mobile
	}
	return p.Desktop
}

func (p Profiles) Validate() error {
	if p.Breakpoint <= 0 {
		return fmt.Errorf("breakpoint must be positive, got %d", p.Breakpoint)
	}
	if err := p.Mobile.Validate(); err != nil {
		return fmt.Errorf("mobile: %w", err)
	}
	if err := p.Desktop.Validate(); err != nil {
		return fmt.Errorf("desktop: %w", err)
	}
	return nil
}

// DefaultProfiles returns the built-in parameter sets.
func DefaultProfiles() Profiles {
	return Profiles{
		Breakpoint: 80,
		Mobile: Profile{
			LogoScaleFrom:       0.2,
			EntranceDuration:    0.7,
			CaptionCharDuration: 0.035,
			CaptionGap:          0.1,
			CursorBlink:         0.4,
			Lines:               2,
			LineWidth:           24,
			LineRevealDuration:  0.5,
			LineStagger:         0.1,
			Particles:           8,
			ExplosionTravelX:    14,
			ExplosionTravelY:    5,
			ExplosionScale:      2,
			ExplosionDuration:   0.6,
			FadeDuration:        0.4,
		},
		Desktop: Profile{
			LogoScaleFrom:       0.3,
			EntranceDuration:    0.9,
			CaptionCharDuration: 0.04,
			CaptionGap:          0.15,
			CursorBlink:         0.4,
			Lines:               4,
			LineWidth:           48,
			LineRevealDuration:  0.6,
			LineStagger:         0.12,
			Particles:           16,
			ExplosionTravelX:    30,
			ExplosionTravelY:    8,
			ExplosionScale:      3,
			ExplosionDuration:   0.75,
			FadeDuration:        0.5,
		},
	}
}

// ParseProfiles decodes YAML over the defaults, so a file only needs the
// values it changes.
func ParseProfiles(data []byte) (Profiles, error) {
	profiles := DefaultProfiles()
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return Profiles{}, fmt.Errorf("decode profiles: %w", err)
	}
	if err := profiles.Validate(); err != nil {
		return Profiles{}, fmt.Errorf("invalid profiles: %w", err)
	}
	return profiles, nil
}

// LoadProfiles reads a YAML profile file.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profiles{}, fmt.Errorf("read profiles: %w", err)
	}
	return ParseProfiles(data)
}
