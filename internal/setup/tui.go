package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/config"
	"github.com/vadiminshakov/txengine/internal/engine"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the wizard writes its config.
const DefaultPath = "txengine.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers holds the raw wizard input.
type Answers struct {
	Input            string
	Policy           string
	Strict           bool
	Delimiter        string
	MaxLineWidth     string
	MaxIntegerDigits string
	OutputFormat     string
	JournalDir       string
	LogLevel         string
}

// DefaultAnswers prefills the wizard with the default configuration.
func DefaultAnswers() Answers {
	def := config.Default()
	return Answers{
		Policy:           string(def.OnDecodeError),
		Strict:           def.StrictSchema,
		Delimiter:        string(def.Delimiter),
		MaxLineWidth:     strconv.Itoa(def.MaxLineWidth),
		MaxIntegerDigits: strconv.Itoa(def.MaxIntegerDigits),
		OutputFormat:     def.OutputFormat,
		LogLevel:         def.LogLevel,
	}
}

// Config validates a and turns it into a run configuration.
func (a Answers) Config() (config.Config, error) {
	cfg := config.Default()
	cfg.Input = a.Input
	cfg.StrictSchema = a.Strict
	cfg.OnDecodeError = engine.Policy(a.Policy)
	cfg.OutputFormat = a.OutputFormat
	cfg.RejectJournalDir = a.JournalDir
	cfg.LogLevel = a.LogLevel

	d, err := config.ParseDelimiter(a.Delimiter)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Delimiter = d

	if cfg.MaxLineWidth, err = strconv.Atoi(a.MaxLineWidth); err != nil {
		return config.Config{}, errors.Wrap(err, "max line width must be an integer")
	}
	if cfg.MaxIntegerDigits, err = strconv.Atoi(a.MaxIntegerDigits); err != nil {
		return config.Config{}, errors.Wrap(err, "max integer digits must be an integer")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg config.Config) error {
	data, err := yaml.Marshal(cfg.Tmp())
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

func screen(step string) {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TXENGINE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

func validateInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative, 0 disables the limit")
	}
	return nil
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
func RunTUI(path string) error {
	a := DefaultAnswers()
	var confirm bool

	// step 1: input
	screen("STEP 1: INPUT")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the engine at a transaction file.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Transaction file").
				Description("CSV with type, client, tx, amount columns (- for stdin)").
				Value(&a.Input).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("input cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Delimiter").
				Description("Single character, or tab").
				Value(&a.Delimiter).
				Validate(func(s string) error {
					_, err := config.ParseDelimiter(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: malformed rows
	screen("STEP 2: MALFORMED ROWS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("On a malformed row").
				Options(
					huh.NewOption("Abort the run", string(engine.PolicyAbort)),
					huh.NewOption("Skip it and continue", string(engine.PolicySkip)),
				).
				Value(&a.Policy),
			huh.NewConfirm().
				Title("Strict schema?").
				Description("Reject rows with unexpected extra fields").
				Value(&a.Strict),
			huh.NewInput().
				Title("Reject journal directory").
				Description("Empty disables the journal").
				Value(&a.JournalDir),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: limits
	screen("STEP 3: LIMITS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Max line width").
				Description("Bytes per row").
				Value(&a.MaxLineWidth).
				Validate(validateInt),
			huh.NewInput().
				Title("Max integer digits").
				Description("Digits before the decimal point").
				Value(&a.MaxIntegerDigits).
				Validate(validateInt),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: output
	screen("STEP 4: OUTPUT")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Report format").
				Options(
					huh.NewOption("CSV", config.OutputCSV),
					huh.NewOption("Table", config.OutputTable),
				).
				Value(&a.OutputFormat),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, err := a.Config()
	if err != nil {
		return err
	}

	// confirmation
	screen("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Input: %s\nOn malformed row: %s\nStrict schema: %t\nOutput: %s\n",
		cfg.Input, cfg.OnDecodeError, cfg.StrictSchema, cfg.OutputFormat,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := Save(path, cfg); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\nConfiguration saved to %s\nRun: txengine --config %s", path, path)))
	return nil
}
