package setup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/txengine/config"
	"github.com/vadiminshakov/txengine/internal/engine"
)

func TestAnswers_Config(t *testing.T) {
	a := DefaultAnswers()
	a.Input = "tx.csv"
	a.Policy = "skip"
	a.Delimiter = "tab"
	a.MaxLineWidth = "512"
	a.OutputFormat = config.OutputTable

	cfg, err := a.Config()
	require.NoError(t, err)
	assert.Equal(t, "tx.csv", cfg.Input)
	assert.Equal(t, engine.PolicySkip, cfg.OnDecodeError)
	assert.Equal(t, byte('\t'), cfg.Delimiter)
	assert.Equal(t, 512, cfg.MaxLineWidth)
	assert.Equal(t, 200, cfg.MaxIntegerDigits)
	assert.Equal(t, config.OutputTable, cfg.OutputFormat)
}

func TestAnswers_ConfigErrors(t *testing.T) {
	tests := map[string]func(a *Answers){
		"no input":        func(a *Answers) { a.Input = "" },
		"bad delimiter":   func(a *Answers) { a.Delimiter = "::" },
		"bad width":       func(a *Answers) { a.MaxLineWidth = "wide" },
		"bad digits":      func(a *Answers) { a.MaxIntegerDigits = "" },
		"negative digits": func(a *Answers) { a.MaxIntegerDigits = "-3" },
		"bad policy":      func(a *Answers) { a.Policy = "retry" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			a := DefaultAnswers()
			a.Input = "tx.csv"
			mutate(&a)
			_, err := a.Config()
			require.Error(t, err)
		})
	}
}

func TestSave_LoadsBack(t *testing.T) {
	a := DefaultAnswers()
	a.Input = "tx.csv"
	a.Policy = "skip"
	a.Strict = false
	a.JournalDir = "wal/rejects"
	cfg, err := a.Config()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Save(path, cfg))

	loaded, err := config.Get([]string{"--config", path}, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateInt(t *testing.T) {
	require.NoError(t, validateInt("0"))
	require.NoError(t, validateInt("4096"))
	require.Error(t, validateInt("-1"))
	require.Error(t, validateInt("x"))
}
