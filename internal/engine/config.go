package engine

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/decoder"
)

// Policy decides what happens to a record that fails to decode.
type Policy string

const (
	// PolicyAbort stops the run at the first malformed record.
	PolicyAbort Policy = "abort"
	// PolicySkip drops malformed records and keeps going.
	PolicySkip Policy = "skip"
)

const defaultChunkSize = 64 * 1024

// ParsePolicy parses "abort" or "skip", case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAbort, PolicySkip:
		return p, nil
	}
	return "", errors.Errorf("unknown decode error policy %q, expected abort or skip", s)
}

// Config holds the engine settings.
type Config struct {
	Decoder       decoder.Options
	OnDecodeError Policy
	// ChunkSize is the read size used by Run.
	ChunkSize int
}

// DefaultConfig returns strict decoding that aborts on the first malformed record.
func DefaultConfig() Config {
	return Config{
		Decoder:       decoder.DefaultOptions(),
		OnDecodeError: PolicyAbort,
		ChunkSize:     defaultChunkSize,
	}
}

// validate checks c and normalizes its policy.
func (c *Config) validate() error {
	policy, err := ParsePolicy(string(c.OnDecodeError))
	if err != nil {
		return err
	}
	c.OnDecodeError = policy
	if c.ChunkSize < 0 {
		return errors.Errorf("chunk size must not be negative, got %d", c.ChunkSize)
	}
	if c.Decoder.MaxLineWidth < 0 {
		return errors.Errorf("max line width must not be negative, got %d", c.Decoder.MaxLineWidth)
	}
	if c.Decoder.Delimiter == '\n' || c.Decoder.Delimiter == '\r' {
		return errors.New("delimiter must not be a line terminator")
	}
	if c.Decoder.MaxIntegerDigits < 0 {
		return errors.Errorf("max integer digits must not be negative, got %d", c.Decoder.MaxIntegerDigits)
	}
	return nil
}
