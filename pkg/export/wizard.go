package export

// This file implements the interactive snapshot wizard for --wizard. It asks
// for a format, an output path, an optional tag filter and conversation to
// highlight, then hands the answers back as SnapshotOptions.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/mindmap/pkg/config"
	"github.com/vanderheijden86/mindmap/pkg/model"
	"github.com/vanderheijden86/mindmap/pkg/render"
)

// maxWizardChoices caps the conversations offered for highlighting.
const maxWizardChoices = 50

// WizardConfig holds the answers of the last wizard run.
type WizardConfig struct {
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	Tag        string `json:"tag,omitempty"`
	Select     int64  `json:"select,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// Options converts the answers into snapshot options.
func (c WizardConfig) Options() SnapshotOptions {
	return SnapshotOptions{
		Path:   c.OutputPath,
		Format: c.Format,
		Tag:    c.Tag,
		Select: c.Select,
		Width:  c.Width,
		Height: c.Height,
	}
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config *WizardConfig
	tags   []string
	convs  []model.Conversation
}

// NewWizard creates a wizard offering the given tags and conversations.
func NewWizard(tags []string, convs []model.Conversation) *Wizard {
	cfg := &WizardConfig{Format: FormatSVG, OutputPath: "mindmap.svg"}
	if saved, err := LoadWizardConfig(); err == nil && saved != nil {
		cfg = saved
	}
	return &Wizard{config: cfg, tags: tags, convs: convs}
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

// Run executes the interactive wizard flow and remembers the answers.
func (w *Wizard) Run() (SnapshotOptions, error) {
	w.printBanner()

	if err := w.collectOutput(); err != nil {
		return SnapshotOptions{}, err
	}
	if err := w.collectFocus(); err != nil {
		return SnapshotOptions{}, err
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not remember answers: %v\n", err)
	}
	return w.config.Options(), nil
}

// GetConfig returns the collected wizard configuration.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

func (w *Wizard) printBanner() {
	fmt.Println("")
	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Println("║           mm → Mind Map Snapshot             ║")
	fmt.Println("╠══════════════════════════════════════════════╣")
	fmt.Println("║  Lays out every conversation and writes the  ║")
	fmt.Println("║  settled map as SVG, PNG or JSON.            ║")
	fmt.Println("║                                              ║")
	fmt.Println("║  Press Ctrl+C anytime to cancel              ║")
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println("")
}

func (w *Wizard) collectOutput() error {
	fmt.Println("Step 1: Output")
	fmt.Println("──────────────")

	path := w.config.OutputPath
	width := strconv.Itoa(orDefault(w.config.Width, 1200))
	height := strconv.Itoa(orDefault(w.config.Height, 800))

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Format").
				Options(
					huh.NewOption("SVG (scalable image)", FormatSVG),
					huh.NewOption("PNG (raster image)", FormatPNG),
					huh.NewOption("JSON (node positions)", FormatJSON),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Output file").
				Value(&path).
				Placeholder("mindmap.svg"),
			huh.NewInput().
				Title("Width (px)").
				Value(&width).
				Validate(validateSize),
			huh.NewInput().
				Title("Height (px)").
				Value(&height).
				Validate(validateSize),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	w.config.OutputPath = SuggestPath(path, w.config.Format)
	w.config.Width, _ = strconv.Atoi(width)
	w.config.Height, _ = strconv.Atoi(height)
	fmt.Println("")
	return nil
}

func (w *Wizard) collectFocus() error {
	fmt.Println("Step 2: Focus")
	fmt.Println("─────────────")

	tagOpts := []huh.Option[string]{huh.NewOption("(no filter)", "")}
	for _, t := range w.tags {
		tagOpts = append(tagOpts, huh.NewOption("#"+t, t))
	}
	convOpts := []huh.Option[int64]{huh.NewOption("(nothing selected)", int64(0))}
	for _, c := range w.convs[:min(len(w.convs), maxWizardChoices)] {
		convOpts = append(convOpts, huh.NewOption(render.Truncate(c.Title, 40), c.ID))
	}

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dim conversations outside a tag?").
				Options(tagOpts...).
				Value(&w.config.Tag),
			huh.NewSelect[int64]().
				Title("Highlight a conversation?").
				Description("Its links are drawn heavier").
				Options(convOpts...).
				Value(&w.config.Select),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	fmt.Println("")
	return nil
}

// SuggestPath makes sure path carries the extension of format.
func SuggestPath(path, format string) string {
	if path == "" {
		path = "mindmap"
	}
	ext := "." + format
	cur := filepath.Ext(path)
	switch {
	case strings.EqualFold(cur, ext):
		return path
	case cur == ".svg" || cur == ".png" || cur == ".json":
		return strings.TrimSuffix(path, cur) + ext
	default:
		return path + ext
	}
}

func validateSize(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 64 || n > 16384 {
		return fmt.Errorf("enter a size between 64 and 16384")
	}
	return nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// WizardConfigPath returns where the last answers are kept.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig reads the last answers. A missing file yields nil.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig remembers the answers for the next run.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine state path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
