package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Defaults mirror the shipped config.ini.
const (
	DefaultSacctCommand = "sacct"
	DefaultTimeout      = 30 * time.Second
	DefaultMemoryUnit   = core.GB
	DefaultTimeUnit     = core.Hours
	DefaultDPI          = 300
	DefaultWidth        = 1200
	DefaultHeight       = 600
	DefaultQuality      = 90
)

// DefaultFields is the sacct field list requested per job. The parser's field
// mapping covers exactly these names.
var DefaultFields = []string{
	"JobID", "Account", "Partition", "User", "State",
	"Submit", "Start", "End",
	"ReqCPUS", "AllocCPUS", "ReqMem", "MaxRSS", "AllocTRES", "CPUTimeRAW",
}

// Config is the validated, immutable configuration handed into the pipeline
// components. Nothing in the pipeline reads ambient process state.
type Config struct {
	// [slurm]
	SacctCommand string
	Timeout      time.Duration
	Fields       []string

	// [processing]
	MemoryUnit core.MemoryUnit
	TimeUnit   core.TimeUnit

	// [plotting]
	DPI    int
	Width  int
	Height int

	// [output]
	Directory string
	Quality   int

	// [archive]
	ArchiveDSN string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SacctCommand: DefaultSacctCommand,
		Timeout:      DefaultTimeout,
		Fields:       append([]string(nil), DefaultFields...),
		MemoryUnit:   DefaultMemoryUnit,
		TimeUnit:     DefaultTimeUnit,
		DPI:          DefaultDPI,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Directory:    ".",
		Quality:      DefaultQuality,
	}
}

// Load reads the INI config from path, or from the standard locations
// (./slurmplot.ini, ~/.slurmplot/config.ini, /etc/slurmplot/config.ini) when
// path is empty. A missing file is not an error: defaults apply. An explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("ini")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("slurmplot")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".slurmplot"))
		}
		v.AddConfigPath("/etc/slurmplot")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	cfg := Default()
	if s := v.GetString("slurm.sacct_command"); s != "" {
		cfg.SacctCommand = s
	}
	if v.IsSet("slurm.timeout") {
		cfg.Timeout = time.Duration(v.GetInt("slurm.timeout")) * time.Second
	}
	if s := v.GetString("slurm.default_fields"); s != "" {
		cfg.Fields = splitFields(s)
	}
	if s := v.GetString("processing.memory_unit"); s != "" {
		u, err := core.ParseMemoryUnit(s)
		if err != nil {
			return nil, errors.Wrap(err, "processing.memory_unit")
		}
		cfg.MemoryUnit = u
	}
	if s := v.GetString("processing.time_unit"); s != "" {
		u, err := core.ParseTimeUnit(s)
		if err != nil {
			return nil, errors.Wrap(err, "processing.time_unit")
		}
		cfg.TimeUnit = u
	}
	if v.IsSet("plotting.dpi") {
		cfg.DPI = v.GetInt("plotting.dpi")
	}
	if v.IsSet("plotting.width") {
		cfg.Width = v.GetInt("plotting.width")
	}
	if v.IsSet("plotting.height") {
		cfg.Height = v.GetInt("plotting.height")
	}
	if s := v.GetString("output.directory"); s != "" {
		cfg.Directory = s
	}
	if v.IsSet("output.quality") {
		cfg.Quality = v.GetInt("output.quality")
	}
	if s := v.GetString("archive.dsn"); s != "" {
		cfg.ArchiveDSN = s
	}

	if err := cfg.Complete(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Complete validates the configuration. Invalid values fail at load time, not
// in the middle of a run.
func (c *Config) Complete() error {
	if c.SacctCommand == "" {
		return fmt.Errorf("sacct_command must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("default_fields must not be empty")
	}
	hasJobID := false
	for _, f := range c.Fields {
		if f == "JobID" {
			hasJobID = true
		}
	}
	if !hasJobID {
		return fmt.Errorf("default_fields must include JobID")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100, got %d", c.Quality)
	}
	return nil
}

func splitFields(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

const defaultINI = `[slurm]
sacct_command = sacct
timeout = 30
default_fields = JobID,Account,Partition,User,State,Submit,Start,End,ReqCPUS,AllocCPUS,ReqMem,MaxRSS,AllocTRES,CPUTimeRAW

[processing]
memory_unit = GB
time_unit = hours

[plotting]
dpi = 300
width = 1200
height = 600

[output]
directory = .
quality = 90

[archive]
; dsn = user:password@tcp(localhost:3306)/slurmplot?parseTime=True
`

// WriteDefault creates a default config file at path, creating parent
// directories as needed. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(os.WriteFile(path, []byte(defaultINI), 0644), "writing default config")
}
