package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// AppName names the XDG config directory.
const AppName = "libsort"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Output  OutputConfig  `toml:"output"`
	BPM     BPMConfig     `toml:"bpm"`
	Genre   GenreConfig   `toml:"genre"`
	Paths   PathsConfig   `toml:"paths"`
	Log     LogConfig     `toml:"log"`
}

// LibraryConfig locates the library export document.
type LibraryConfig struct {
	Path string `toml:"path"`
}

// OutputConfig controls playlist files and report output.
type OutputConfig struct {
	Dir        string `toml:"dir"`
	Extended   bool   `toml:"extended"`
	SampleSize int    `toml:"sample_size"`
	TopGenres  int    `toml:"top_genres"`
}

// BPMConfig lists tempo buckets by lower bound.
type BPMConfig struct {
	Buckets []BPMBucketConfig `toml:"buckets"`
}

// BPMBucketConfig is one tempo bucket; its upper bound is the next bucket's Min.
type BPMBucketConfig struct {
	Label string  `toml:"label"`
	Min   float64 `toml:"min"`
}

// GenreConfig controls genre grouping.
type GenreConfig struct {
	Enabled       bool `toml:"enabled"`
	CaseSensitive bool `toml:"case_sensitive"`
	MinTracks     int  `toml:"min_tracks"`
}

// PathsConfig controls location resolution.
type PathsConfig struct {
	CheckExists bool            `toml:"check_exists"`
	Rewrite     []PrefixRewrite `toml:"rewrite"`
}

// PrefixRewrite replaces a leading path prefix.
type PrefixRewrite struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it on [DefaultConfig].
//
// A file that declares its own bpm.buckets replaces the default bucket list entirely.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.BPM.Buckets = nil
	config.Paths.Rewrite = nil

	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	if !md.IsDefined("bpm", "buckets") {
		config.BPM.Buckets = DefaultConfig().BPM.Buckets
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindConfig returns the config file to load: explicit when it exists, otherwise the XDG config location.
//
// An empty string means no file was found and defaults apply.
func FindConfig(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
	}
	if p, err := xdg.SearchConfigFile(AppName + "/config.toml"); err == nil {
		return p
	}
	return ""
}

// Validate checks values that the rest of the program assumes.
//
// Bucket boundaries are validated again when the classifier is built; this covers what can be checked without it.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Library.Path) == "" {
		errs = append(errs, errors.New("library.path is empty"))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, errors.New("output.dir is empty"))
	}
	if c.Output.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("output.sample_size must not be negative, got %d", c.Output.SampleSize))
	}
	if c.Output.TopGenres < 0 {
		errs = append(errs, fmt.Errorf("output.top_genres must not be negative, got %d", c.Output.TopGenres))
	}
	if len(c.BPM.Buckets) == 0 {
		errs = append(errs, errors.New("bpm.buckets is empty"))
	}
	if c.Genre.MinTracks < 0 {
		errs = append(errs, fmt.Errorf("genre.min_tracks must not be negative, got %d", c.Genre.MinTracks))
	}
	for i, rw := range c.Paths.Rewrite {
		if rw.From == "" {
			errs = append(errs, fmt.Errorf("paths.rewrite[%d].from is empty", i))
		}
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %v", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
