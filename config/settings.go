package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/newgrf_browser/grf/spec"
)

// Settings control a load session and the browser around it.
type Settings struct {
	Climate        string      `yaml:"climate"`
	StartingYear   int         `yaml:"starting_year"`
	DynamicEngines bool        `yaml:"dynamic_engines"`
	DebugLevel     int         `yaml:"debug_level"`
	Encoding       string      `yaml:"encoding"`
	Limits         spec.Limits `yaml:"limits"`

	// Game the modules are loaded for, read through global variables
	MapSizeX       int    `yaml:"map_size_x"`
	MapSizeY       int    `yaml:"map_size_y"`
	MapHeightLimit int    `yaml:"map_height_limit"`
	SnowLine       int    `yaml:"snow_line"`
	Seed           uint32 `yaml:"seed"`
	DriveOnRight   bool   `yaml:"drive_on_right"`
	FreightTrains  int    `yaml:"freight_trains"`
	PlaneSpeed     int    `yaml:"plane_speed"`

	// SpriteBase is the first sprite id handed to module sprites, 0 starts
	// right after the replaceable base graphics
	SpriteBase uint32 `yaml:"sprite_base"`

	ContentDir string `yaml:"content_dir"`
	ModuleList string `yaml:"module_list"`
	Listen     string `yaml:"listen"`
}

var climateNames = []string{"temperate", "arctic", "tropic", "toyland"}

func DefaultSettings() Settings {
	return Settings{
		Climate:      "temperate",
		StartingYear: 1950,
		DebugLevel:   1,
		Encoding:     charmap.ISO8859_1.String(),
		Limits:       spec.DefaultLimits(),

		MapSizeX:       256,
		MapSizeY:       256,
		MapHeightLimit: 30,
		SnowLine:       10,
		FreightTrains:  1,
		PlaneSpeed:     4,

		ContentDir: "content",
		ModuleList: "newgrf.ini",
		Listen:     ":8000",
	}
}

// ClimateID returns the climate index of the climate name.
func (s *Settings) ClimateID() (uint8, error) {
	for i, name := range climateNames {
		if strings.EqualFold(s.Climate, name) {
			return uint8(i), nil
		}
	}
	return 0, errors.Errorf("Unknown climate %q", s.Climate)
}

// Validate checks the settings and applies the string encoding.
func (s *Settings) Validate() error {
	if _, err := s.ClimateID(); err != nil {
		return err
	}
	if s.StartingYear < 0 || s.StartingYear > 5000000 {
		return errors.Errorf("Starting year %d out of range", s.StartingYear)
	}
	for _, size := range []int{s.MapSizeX, s.MapSizeY} {
		if size < 64 || size > 4096 || size&(size-1) != 0 {
			return errors.Errorf("Map size %d must be a power of two between 64 and 4096", size)
		}
	}
	if s.PlaneSpeed < 1 || s.PlaneSpeed > 4 {
		return errors.Errorf("Plane speed %d out of range", s.PlaneSpeed)
	}
	if s.DebugLevel < 0 {
		return errors.Errorf("Debug level %d must not be negative", s.DebugLevel)
	}
	if s.Encoding != "" {
		if err := SetEncoding(s.Encoding); err != nil {
			return err
		}
	}
	return nil
}

// LoadSettings reads a yaml settings file over the defaults. An empty path
// returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, errors.Wrapf(err, "Failed to read settings")
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, errors.Wrapf(err, "Failed to parse settings %q", path)
		}
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrapf(err, "Invalid settings %q", path)
	}
	return s, nil
}
