package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// WizardConfig holds the answers collected by the export wizard.
type WizardConfig struct {
	Format         string // "svg" or "png"
	Dir            string
	FileName       string
	Title          string
	IncludeSummary bool
}

// Path joins the chosen directory and file name, adding the format's
// extension when the name has none.
func (c WizardConfig) Path() string {
	name := c.FileName
	if filepath.Ext(name) == "" {
		name += "." + c.Format
	}
	return filepath.Join(c.Dir, name)
}

// Options converts the answers to export options.
func (c WizardConfig) Options() Options {
	return Options{Path: c.Path(), Format: c.Format}
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config WizardConfig
}

// NewWizard creates a wizard seeded with the sheet name and the configured
// export directory and format.
func NewWizard(sheetName, dir, format string) *Wizard {
	if format == "" {
		format = "svg"
	}
	return &Wizard{config: WizardConfig{
		Format:         format,
		Dir:            dir,
		FileName:       DefaultFileName(sheetName, time.Now()),
		Title:          sheetName,
		IncludeSummary: true,
	}}
}

// DefaultFileName builds "<sheet>-<timestamp>" with path separators and
// spaces replaced.
func DefaultFileName(sheetName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(sheetName), filepath.Ext(sheetName))
	base = strings.NewReplacer(" ", "_", ":", "_", string(os.PathSeparator), "_").Replace(base)
	if base == "" || base == "." {
		base = "sheet"
	}
	return fmt.Sprintf("%s-%s", base, now.Format("20060102-150405"))
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks for format, destination and title.
func (w *Wizard) Run() (WizardConfig, error) {
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Snapshot format").
				Options(
					huh.NewOption("SVG (scalable, text stays selectable)", "svg"),
					huh.NewOption("PNG (bitmap)", "png"),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Directory").
				Placeholder("current directory").
				Value(&w.config.Dir),
			huh.NewInput().
				Title("File name").
				Value(&w.config.FileName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("file name is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Title (optional)").
				Value(&w.config.Title),
			huh.NewConfirm().
				Title("Include column summary?").
				Value(&w.config.IncludeSummary),
		),
	)

	if err := form.Run(); err != nil {
		return WizardConfig{}, err
	}
	w.config.FileName = strings.TrimSpace(w.config.FileName)
	return w.config, nil
}

// Config returns the current answers.
func (w *Wizard) Config() WizardConfig {
	return w.config
}
