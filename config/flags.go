package config

import (
	"flag"
	"io"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/engine"
)

// Get builds the run configuration from args (without the program name).
// Values come from the defaults, then the --config file, then explicit flags.
// The single positional argument is the input file.
func Get(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("txengine", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	def := Default()
	configPath := fs.String("config", "", "path to yaml config")
	strict := fs.Bool("strict-schema", def.StrictSchema, "reject rows with unexpected fields")
	policy := fs.String("on-decode-error", string(def.OnDecodeError), "what to do with malformed rows: abort or skip")
	delimiter := fs.String("delimiter", string(def.Delimiter), "field delimiter, a single character or \"tab\"")
	chunkSize := fs.Int("chunk-size", def.ChunkSize, "read size in bytes")
	maxLine := fs.Int("max-line-width", def.MaxLineWidth, "longest accepted row in bytes, 0 disables the limit")
	maxDigits := fs.Int("max-integer-digits", def.MaxIntegerDigits, "longest accepted integer part of an amount, 0 disables the limit")
	format := fs.String("output", def.OutputFormat, "report format: csv or table")
	journal := fs.String("reject-journal-dir", "", "directory of the WAL journal for malformed rows, empty disables it")
	logLevel := fs.String("log-level", def.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = getYaml(*configPath); err != nil {
			return Config{}, err
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict-schema":
			cfg.StrictSchema = *strict
		case "on-decode-error":
			cfg.OnDecodeError = engine.Policy(*policy)
		case "delimiter":
			d, err := ParseDelimiter(*delimiter)
			if err != nil {
				flagErr = errors.Wrap(err, "invalid --delimiter")
				return
			}
			cfg.Delimiter = d
		case "chunk-size":
			cfg.ChunkSize = *chunkSize
		case "max-line-width":
			cfg.MaxLineWidth = *maxLine
		case "max-integer-digits":
			cfg.MaxIntegerDigits = *maxDigits
		case "output":
			cfg.OutputFormat = *format
		case "reject-journal-dir":
			cfg.RejectJournalDir = *journal
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if flagErr != nil {
		return Config{}, flagErr
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Input = fs.Arg(0)
	default:
		return Config{}, errors.Errorf("expected one input file, got %d arguments", fs.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
