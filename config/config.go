package config

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/decoder"
	"github.com/vadiminshakov/txengine/internal/engine"
	"gopkg.in/yaml.v3"
)

// Output formats for the final account report.
const (
	OutputCSV   = "csv"
	OutputTable = "table"
)

var logLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// Input is the path of the transaction file; "-" reads stdin.
	Input            string
	StrictSchema     bool
	OnDecodeError    engine.Policy
	Delimiter        byte
	ChunkSize        int
	MaxLineWidth     int
	MaxIntegerDigits int
	OutputFormat     string
	// RejectJournalDir enables the reject journal when set.
	RejectJournalDir string
	LogLevel         string
}

// ConfigTmp mirrors the YAML file. Empty values keep the defaults.
type ConfigTmp struct {
	Input            string `yaml:"input,omitempty"`
	StrictSchema     *bool  `yaml:"strict_schema,omitempty"`
	OnDecodeError    string `yaml:"on_decode_error,omitempty"`
	Delimiter        string `yaml:"delimiter,omitempty"`
	ChunkSizeStr     string `yaml:"chunk_size,omitempty"`
	MaxLineWidthStr  string `yaml:"max_line_width,omitempty"`
	MaxIntDigitsStr  string `yaml:"max_integer_digits,omitempty"`
	OutputFormat     string `yaml:"output_format,omitempty"`
	RejectJournalDir string `yaml:"reject_journal_dir,omitempty"`
	LogLevel         string `yaml:"log_level,omitempty"`
}

// Default returns the settings used when neither file nor flags say otherwise.
func Default() Config {
	ec := engine.DefaultConfig()
	return Config{
		StrictSchema:     ec.Decoder.StrictSchema,
		OnDecodeError:    ec.OnDecodeError,
		Delimiter:        ec.Decoder.Delimiter,
		ChunkSize:        ec.ChunkSize,
		MaxLineWidth:     ec.Decoder.MaxLineWidth,
		MaxIntegerDigits: ec.Decoder.MaxIntegerDigits,
		OutputFormat:     OutputCSV,
		LogLevel:         "info",
	}
}

// Engine converts c into the engine settings.
func (c Config) Engine() engine.Config {
	return engine.Config{
		Decoder: decoder.Options{
			StrictSchema:     c.StrictSchema,
			Delimiter:        c.Delimiter,
			MaxLineWidth:     c.MaxLineWidth,
			MaxIntegerDigits: c.MaxIntegerDigits,
		},
		OnDecodeError: c.OnDecodeError,
		ChunkSize:     c.ChunkSize,
	}
}

// Validate checks c and normalizes its enumerated values.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input file is required")
	}

	policy, err := engine.ParsePolicy(string(c.OnDecodeError))
	if err != nil {
		return err
	}
	c.OnDecodeError = policy

	if c.Delimiter == 0 || c.Delimiter == '\n' || c.Delimiter == '\r' || c.Delimiter == '.' {
		return errors.Errorf("invalid delimiter %q", c.Delimiter)
	}
	if c.ChunkSize <= 0 {
		return errors.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxLineWidth < 0 {
		return errors.Errorf("max_line_width must not be negative, got %d", c.MaxLineWidth)
	}
	if c.MaxIntegerDigits < 0 {
		return errors.Errorf("max_integer_digits must not be negative, got %d", c.MaxIntegerDigits)
	}

	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	if c.OutputFormat != OutputCSV && c.OutputFormat != OutputTable {
		return errors.Errorf("unknown output_format %q, expected %s or %s", c.OutputFormat, OutputCSV, OutputTable)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !slices.Contains(logLevels, c.LogLevel) {
		return errors.Errorf("unknown log_level %q, expected one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}

	return nil
}

// ParseDelimiter accepts a single byte, or "tab" / "\t".
func ParseDelimiter(s string) (byte, error) {
	switch s {
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if len(s) != 1 {
		return 0, errors.Errorf("delimiter must be a single character, got %q", s)
	}
	return s[0], nil
}

func getYaml(path string) (Config, error) {
	var tmp ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	return tmp.apply(Default())
}

// apply overlays the values present in the file onto cfg.
func (c ConfigTmp) apply(cfg Config) (Config, error) {
	if c.Input != "" {
		cfg.Input = c.Input
	}
	if c.StrictSchema != nil {
		cfg.StrictSchema = *c.StrictSchema
	}
	if c.OnDecodeError != "" {
		cfg.OnDecodeError = engine.Policy(c.OnDecodeError)
	}
	if c.Delimiter != "" {
		d, err := ParseDelimiter(c.Delimiter)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect 'delimiter' param in yaml config")
		}
		cfg.Delimiter = d
	}

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"chunk_size", c.ChunkSizeStr, &cfg.ChunkSize},
		{"max_line_width", c.MaxLineWidthStr, &cfg.MaxLineWidth},
		{"max_integer_digits", c.MaxIntDigitsStr, &cfg.MaxIntegerDigits},
	}
	for _, p := range ints {
		if p.raw == "" {
			continue
		}
		v, err := strconv.Atoi(p.raw)
		if err != nil {
			return Config{}, errors.Wrapf(err, "incorrect '%s' param in yaml config (must be an integer)", p.name)
		}
		*p.dst = v
	}

	if c.OutputFormat != "" {
		cfg.OutputFormat = c.OutputFormat
	}
	if c.RejectJournalDir != "" {
		cfg.RejectJournalDir = c.RejectJournalDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}

	return cfg, nil
}

// Tmp returns the YAML mirror of c.
func (c Config) Tmp() ConfigTmp {
	strict := c.StrictSchema
	delimiter := string(c.Delimiter)
	if c.Delimiter == '\t' {
		delimiter = "tab"
	}
	return ConfigTmp{
		Input:            c.Input,
		StrictSchema:     &strict,
		OnDecodeError:    string(c.OnDecodeError),
		Delimiter:        delimiter,
		ChunkSizeStr:     strconv.Itoa(c.ChunkSize),
		MaxLineWidthStr:  strconv.Itoa(c.MaxLineWidth),
		MaxIntDigitsStr:  strconv.Itoa(c.MaxIntegerDigits),
		OutputFormat:     c.OutputFormat,
		RejectJournalDir: c.RejectJournalDir,
		LogLevel:         c.LogLevel,
	}
}
