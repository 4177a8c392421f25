package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gorhill/cronexpr"
)

// DefaultPalette colours attributed sources in rendered reports.
var DefaultPalette = []string{"#FF5252", "#E040FB", "#536DFE", "#40C4FF", "#64FFDA", "#B2FF59", "#FFFF00", "#FFAB40"}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// HighlightConfig controls report rendering.
type HighlightConfig struct {
	Palette []string `mapstructure:"palette"`
}

// Normalize trims palette entries and falls back to DefaultPalette.
func (c HighlightConfig) Normalize() HighlightConfig {
	var palette []string
	for _, colour := range c.Palette {
		colour = strings.ToUpper(strings.TrimSpace(colour))
		if colour != "" {
			palette = append(palette, colour)
		}
	}
	if len(palette) == 0 {
		palette = append([]string(nil), DefaultPalette...)
	}
	c.Palette = palette
	return c
}

func (c HighlightConfig) Validate() error {
	for _, colour := range c.Palette {
		if !hexColor.MatchString(colour) {
			return fmt.Errorf("highlight.palette entry %q is not a #RRGGBB colour", colour)
		}
	}
	return nil
}

// ScheduleConfig runs a research topic whenever Cron is due.
type ScheduleConfig struct {
	Topic     string `mapstructure:"topic"`
	Assistant string `mapstructure:"assistant"`
	Cron      string `mapstructure:"cron"`
	Translate bool   `mapstructure:"translate"`
}

// Normalize trims fields and applies the default assistant profile.
func (s ScheduleConfig) Normalize(defaultProfile string) ScheduleConfig {
	s.Topic = strings.TrimSpace(s.Topic)
	s.Cron = strings.TrimSpace(s.Cron)
	s.Assistant = strings.ToLower(strings.TrimSpace(s.Assistant))
	if s.Assistant == "" {
		s.Assistant = defaultProfile
	}
	return s
}

func (s ScheduleConfig) Validate() error {
	if s.Topic == "" {
		return fmt.Errorf("topic required")
	}
	if _, err := cronexpr.Parse(s.Cron); err != nil {
		return fmt.Errorf("invalid cron %q: %w", s.Cron, err)
	}
	return nil
}
