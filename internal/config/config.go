package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel   = "info"
	DefaultEncoding   = "UTF-8"
	DefaultValidation = "relaxed"

	// EnvPrefix prefixes every environment variable, e.g. P2M_LOGLEVEL
	EnvPrefix = "P2M"

	// Usage is the one-line synopsis printed after argument errors
	Usage = "usage: pdf2msgpack [--meta-only] [--pages=a-b] [--bitmap] <filename>"
)

// ErrVersionRequested is returned by LoadFromArgs when --version is given
var ErrVersionRequested = errors.New("version requested")

// PageRange is an inclusive, 1-based range of pages. The zero value selects
// the whole document.
type PageRange struct {
	Start int
	End   int
}

// Specified reports whether a range was given on the command line
func (r PageRange) Specified() bool {
	return r.Start != 0 || r.End != 0
}

func (r PageRange) String() string {
	if !r.Specified() {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Config holds all configuration for a pdf2msgpack run
type Config struct {
	// Input
	Filename string
	Pages    PageRange

	// Output selection
	MetaOnly bool
	Bitmap   bool

	// Application configuration
	Encoding   string
	Validation string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Encoding:   DefaultEncoding,
		Validation: DefaultValidation,
		LogLevel:   DefaultLogLevel,
	}
}

// LoadFromArgs parses the command line (without the program name) and the
// environment and returns a validated configuration.
func LoadFromArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()

	if checkVersionFlag(args) {
		return nil, ErrVersionRequested
	}

	v := viper.New()
	fs := pflag.NewFlagSet("pdf2msgpack", pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs)

	normalized, err := normalizeArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(normalized); err != nil {
		return nil, err
	}

	if err := populateConfigFromViper(v, fs, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("meta-only", cfg.MetaOnly)
	v.SetDefault("bitmap", cfg.Bitmap)
	v.SetDefault("pages", "")
	v.SetDefault("encoding", cfg.Encoding)
	v.SetDefault("validation", cfg.Validation)
	v.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Bool("meta-only", cfg.MetaOnly, "Write only the document metadata")
	fs.String("pages", "", "Inclusive page range to extract, e.g. 1-10")
	fs.Bool("bitmap", cfg.Bitmap, "Add a Bitmap entry to every page")
	fs.String("encoding", cfg.Encoding, "Text encoding for document strings (IANA name)")
	fs.String("validation", cfg.Validation, "Document validation: relaxed, strict or off")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Bool("version", false, "Print version information and exit")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{"meta-only", "pages", "bitmap", "encoding", "validation", "loglevel"} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
	// P2M_META_ONLY rather than P2M_META-ONLY
	_ = v.BindEnv("meta-only", EnvPrefix+"_META_ONLY")
}

// setupUsageMessage keeps pflag quiet; argument errors are reported by the
// caller followed by the one-line usage.
func setupUsageMessage(fs *pflag.FlagSet) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, fs *pflag.FlagSet, cfg *Config) error {
	cfg.MetaOnly = v.GetBool("meta-only")
	cfg.Bitmap = v.GetBool("bitmap")
	cfg.Encoding = v.GetString("encoding")
	cfg.Validation = v.GetString("validation")
	cfg.LogLevel = v.GetString("loglevel")

	if pages := v.GetString("pages"); pages != "" {
		r, err := ParsePageRange(pages)
		if err != nil {
			return err
		}
		cfg.Pages = r
	}

	switch fs.NArg() {
	case 0:
		return errors.New("no input file specified")
	case 1:
		cfg.Filename = fs.Arg(0)
	default:
		return fmt.Errorf("unknown parameter specified: %s", fs.Arg(1))
	}
	return nil
}

// normalizeArgs accepts both -flag and --flag spellings and separates the
// filename from the flags. An argument that looks like a flag but names an
// existing file is taken as the filename when none has been given yet.
func normalizeArgs(args []string) ([]string, error) {
	var flags []string
	var filename string
	haveFile := false

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			if haveFile {
				return nil, fmt.Errorf("unknown parameter specified: %s", arg)
			}
			filename, haveFile = arg, true
			continue
		}

		name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		key, value, hasValue := strings.Cut(name, "=")

		switch key {
		case "pages":
			if !hasValue {
				return nil, errors.New("--pages must be specified as --pages=a-b")
			}
			if _, err := ParsePageRange(value); err != nil {
				return nil, err
			}
		case "encoding", "validation", "loglevel":
			if !hasValue {
				return nil, fmt.Errorf("--%s must be specified as --%s=%s", key, key, valueNames[key])
			}
		case "meta-only", "bitmap":
		default:
			if fileExists(name) && !haveFile {
				filename, haveFile = name, true
				continue
			}
			return nil, fmt.Errorf("unknown parameter specified: %s", name)
		}
		flags = append(flags, "--"+name)
	}

	if haveFile {
		// Terminate flag parsing so a filename beginning with "-" stays
		// positional.
		flags = append(flags, "--", filename)
	}
	return flags, nil
}

// valueNames names the argument of each flag that takes one
var valueNames = map[string]string{
	"encoding":   "NAME",
	"validation": "MODE",
	"loglevel":   "LEVEL",
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// ParsePageRange parses an inclusive range written as A-B, with
// 1 <= A <= B. The whole value must be consumed.
func ParsePageRange(s string) (PageRange, error) {
	invalid := errors.New("invalid format for pages: specify like 1-10")

	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return PageRange{}, invalid
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return PageRange{}, invalid
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return PageRange{}, invalid
	}
	if start < 1 || end < start {
		return PageRange{}, invalid
	}
	return PageRange{Start: start, End: end}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Filename == "" {
		return errors.New("no input file specified")
	}

	if c.Pages.Specified() && (c.Pages.Start < 1 || c.Pages.End < c.Pages.Start) {
		return errors.New("invalid format for pages: specify like 1-10")
	}

	if c.Encoding == "" {
		return errors.New("encoding cannot be empty")
	}

	switch c.Validation {
	case "off", "relaxed", "strict":
	default:
		return fmt.Errorf("invalid validation mode: %s (must be one of: off, relaxed, strict)", c.Validation)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// CheckPageCount verifies that a specified range lies within a document of
// n pages.
func (c *Config) CheckPageCount(n int) error {
	if !c.Pages.Specified() {
		return nil
	}
	if c.Pages.Start > n || c.Pages.End > n {
		return fmt.Errorf("specified page range (%d - %d) exceeds document length (%d)", c.Pages.Start, c.Pages.End, n)
	}
	return nil
}

// PageSpan returns the first and last page to extract from a document of n
// pages.
func (c *Config) PageSpan(n int) (first, last int) {
	if !c.Pages.Specified() {
		return 1, n
	}
	return c.Pages.Start, c.Pages.End
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Filename: %s, Pages: %s, MetaOnly: %t, Bitmap: %t, Encoding: %s, Validation: %s, LogLevel: %s}",
		c.Filename, c.Pages, c.MetaOnly, c.Bitmap, c.Encoding, c.Validation, c.LogLevel)
}
