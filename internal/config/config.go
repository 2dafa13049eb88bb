// Package config loads the tool configuration: compiled-in defaults,
// optionally overlaid by a YAML file, with secrets taken from the
// environment. The loaded struct is validated once and treated as
// immutable afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mgaillard/shortforge/internal/types"
)

type Config struct {
	OutputDir    string `yaml:"output_dir" validate:"required"`
	WorkDir      string `yaml:"work_dir"`
	DatabasePath string `yaml:"database_path" validate:"required"`

	FFmpeg   FFmpegConfig            `yaml:"ffmpeg"`
	Viral    ViralConfig             `yaml:"viral"`
	Captions CaptionsConfig          `yaml:"captions"`
	Fonds    FondsConfig             `yaml:"fonds"`
	Profiles []types.PlatformProfile `yaml:"platforms" validate:"required,min=1,dive"`
}

type FFmpegConfig struct {
	BinaryPath   string  `yaml:"binary_path"`
	ProbePath    string  `yaml:"probe_path"`
	StageTimeout float64 `yaml:"stage_timeout_seconds" validate:"gte=0"`
}

type ViralConfig struct {
	MinScore float64 `yaml:"min_score" validate:"gte=0,lte=1"`
	TopK     int     `yaml:"top_k" validate:"gt=0"`
	// Keywords overrides the built-in keyword weight table when non-empty.
	Keywords map[string]float64 `yaml:"keywords"`
}

type CaptionsConfig struct {
	FontSize     int     `yaml:"font_size" validate:"gt=0"`
	HookDuration float64 `yaml:"hook_duration_seconds" validate:"gt=0"`
	MaxLineChars int     `yaml:"max_line_chars" validate:"gt=0"`
	// HookTexts and CTAPrompts are keyed by platform profile key.
	HookTexts  map[string]string   `yaml:"hook_texts"`
	CTAPrompts map[string][]string `yaml:"cta_prompts"`
}

type FondsConfig struct {
	// Dir holds the downloaded background clip files.
	Dir string `yaml:"dir"`
	// DefaultTheme is used when a video has no classified theme.
	DefaultTheme  string `yaml:"default_theme"`
	PexelsAPIKey  string `yaml:"-"`
	PixabayAPIKey string `yaml:"-"`
}

// Load reads the config file at path (or the first discovered candidate
// when path is empty), overlays it on the defaults, pulls secrets from the
// environment and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Fonds.PexelsAPIKey = os.Getenv("PEXELS_API_KEY")
	cfg.Fonds.PixabayAPIKey = os.Getenv("PIXABAY_API_KEY")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Profile looks up a platform profile by key.
func (c *Config) Profile(key string) (types.PlatformProfile, bool) {
	for _, p := range c.Profiles {
		if p.Key == key {
			return p, true
		}
	}
	return types.PlatformProfile{}, false
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:    "shorts",
		WorkDir:      "",
		DatabasePath: "shortforge.db",
		FFmpeg: FFmpegConfig{
			BinaryPath:   "ffmpeg",
			ProbePath:    "ffprobe",
			StageTimeout: 300,
		},
		Viral: ViralConfig{
			MinScore: 0.6,
			TopK:     3,
		},
		Captions: CaptionsConfig{
			FontSize:     48,
			HookDuration: 5,
			MaxLineChars: 100,
			HookTexts: map[string]string{
				"tiktok":          "Wait for it...",
				"youtube_shorts":  "You need to hear this",
				"instagram_reels": "This changes everything",
			},
			CTAPrompts: map[string][]string{
				"tiktok": {
					"Follow for more!",
					"Drop a comment below!",
					"Share this with a friend!",
				},
				"youtube_shorts": {
					"Subscribe for more!",
					"Like if this helped you!",
					"Comment your thoughts!",
				},
				"instagram_reels": {
					"Follow for daily content!",
					"Save this for later!",
					"Tag someone who needs this!",
				},
			},
		},
		Fonds: FondsConfig{
			Dir:          "fonds",
			DefaultTheme: "motivation",
		},
		Profiles: []types.PlatformProfile{
			{
				Key:          "tiktok",
				AspectRatio:  "9:16",
				MinDuration:  70,
				MaxDuration:  90,
				CaptionStyle: "tiktok",
				Effects: []types.Effect{
					types.EffectZoom, types.EffectTextAnimations,
					types.EffectTransitions, types.EffectFilters,
				},
			},
			{
				Key:          "youtube_shorts",
				AspectRatio:  "9:16",
				MinDuration:  70,
				MaxDuration:  90,
				CaptionStyle: "youtube",
				Effects: []types.Effect{
					types.EffectZoom, types.EffectTextAnimations,
					types.EffectTransitions,
				},
			},
			{
				Key:          "instagram_reels",
				AspectRatio:  "9:16",
				MinDuration:  70,
				MaxDuration:  90,
				CaptionStyle: "instagram",
				Effects: []types.Effect{
					types.EffectZoom, types.EffectTextAnimations,
					types.EffectTransitions, types.EffectFilters,
				},
			},
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./shortforge.yaml",
		"./shortforge.yml",
		filepath.Join(os.Getenv("HOME"), ".shortforge", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
