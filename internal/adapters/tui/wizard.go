// Package tui implements the interactive profile setup wizard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"decksync/internal/config"
	"decksync/internal/ports"
)

// ProfileSpec is the wizard's result: everything needed to build a
// profile with one output.
type ProfileSpec struct {
	Source       ports.Source
	User         string
	Target       ports.Target
	Path         string
	IncludeMaybe bool
	Name         string
}

type step int

const (
	stepSource step = iota
	stepUser
	stepVerifying
	stepTarget
	stepPath
	stepPathManual
	stepMaybe
	stepName
	stepDone
)

// Wizard walks the user through creating a profile: source, user name
// (verified against the site), target, output directory, maybeboard
// option and an optional display name.
type Wizard struct {
	ctx       context.Context
	sources   []ports.Source
	targets   []ports.Target
	knownDirs []string

	step    step
	cursor  int
	input   textinput.Model
	errText string

	spec      ProfileSpec
	cancelled bool
}

// NewWizard creates a wizard over the given registries. knownDirs are
// output directories already in use, offered for reuse.
func NewWizard(ctx context.Context, sources []ports.Source, targets []ports.Target, knownDirs []string) *Wizard {
	input := textinput.New()
	input.CharLimit = 256
	input.Width = 48
	return &Wizard{
		ctx:       ctx,
		sources:   sources,
		targets:   targets,
		knownDirs: knownDirs,
		input:     input,
	}
}

// Run executes the wizard and returns its result. A nil spec with a nil
// error means the user cancelled.
func Run(ctx context.Context, sources []ports.Source, targets []ports.Target, knownDirs []string) (*ProfileSpec, error) {
	final, err := tea.NewProgram(NewWizard(ctx, sources, targets, knownDirs)).Run()
	if err != nil {
		return nil, fmt.Errorf("running profile wizard: %w", err)
	}
	w, ok := final.(*Wizard)
	if !ok || w.cancelled || w.step != stepDone {
		return nil, nil
	}
	spec := w.spec
	return &spec, nil
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	return nil
}

type verifiedMsg struct {
	ok  bool
	err error
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case verifiedMsg:
		return w.updateVerified(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			w.cancelled = true
			return w, tea.Quit
		}
		return w.updateKey(msg)
	}
	return w, nil
}

func (w *Wizard) updateVerified(msg verifiedMsg) (tea.Model, tea.Cmd) {
	if w.step != stepVerifying {
		return w, nil
	}
	switch {
	case msg.err != nil:
		w.errText = fmt.Sprintf("could not verify user: %v", msg.err)
		w.step = stepUser
	case !msg.ok:
		w.errText = fmt.Sprintf("no public decks found for %q on %s", w.spec.User, w.spec.Source.Name())
		w.step = stepUser
	default:
		w.errText = ""
		w.enterChoice(stepTarget)
	}
	return w, nil
}

func (w *Wizard) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch w.step {
	case stepSource, stepTarget, stepPath, stepMaybe:
		return w.updateChoiceKey(msg)
	case stepUser, stepPathManual, stepName:
		return w.updateInputKey(msg)
	}
	return w, nil
}

func (w *Wizard) updateChoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := len(w.choices())
	switch msg.String() {
	case "up", "k":
		if w.cursor > 0 {
			w.cursor--
		}
	case "down", "j":
		if w.cursor < options-1 {
			w.cursor++
		}
	case "enter":
		return w.selectChoice()
	}
	return w, nil
}

func (w *Wizard) updateInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		return w.submitInput()
	}
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *Wizard) selectChoice() (tea.Model, tea.Cmd) {
	switch w.step {
	case stepSource:
		w.spec.Source = w.sources[w.cursor]
		w.enterInput(stepUser, "user name", "")
	case stepTarget:
		w.spec.Target = w.targets[w.cursor]
		w.enterChoice(stepPath)
	case stepPath:
		choices := w.choices()
		if w.cursor == len(choices)-1 {
			w.enterInput(stepPathManual, "output directory", "")
			return w, nil
		}
		w.spec.Path = choices[w.cursor]
		w.enterChoice(stepMaybe)
	case stepMaybe:
		w.spec.IncludeMaybe = w.cursor == 0
		w.enterInput(stepName, "profile name (optional)", "")
	}
	return w, nil
}

func (w *Wizard) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(w.input.Value())
	switch w.step {
	case stepUser:
		if value == "" {
			return w, nil
		}
		w.spec.User = value
		w.errText = ""
		w.step = stepVerifying
		return w, w.verifyUser()
	case stepPathManual:
		if value == "" {
			return w, nil
		}
		w.spec.Path = config.ExpandPath(value)
		w.enterChoice(stepMaybe)
	case stepName:
		w.spec.Name = value
		w.step = stepDone
		return w, tea.Quit
	}
	return w, nil
}

func (w *Wizard) verifyUser() tea.Cmd {
	ctx, source, user := w.ctx, w.spec.Source, w.spec.User
	return func() tea.Msg {
		ok, err := source.VerifyUser(ctx, user)
		return verifiedMsg{ok: ok, err: err}
	}
}

func (w *Wizard) enterChoice(s step) {
	w.step = s
	w.cursor = 0
}

func (w *Wizard) enterInput(s step, placeholder, value string) {
	w.step = s
	w.input.Placeholder = placeholder
	w.input.SetValue(value)
	w.input.Focus()
}

// choices returns the option labels for the current selection step.
func (w *Wizard) choices() []string {
	switch w.step {
	case stepSource:
		labels := make([]string, len(w.sources))
		for i, s := range w.sources {
			labels[i] = s.Name()
		}
		return labels
	case stepTarget:
		labels := make([]string, len(w.targets))
		for i, t := range w.targets {
			labels[i] = t.Name()
		}
		return labels
	case stepPath:
		labels := []string{w.spec.Target.SuggestDirectory()}
		for _, dir := range w.knownDirs {
			if dir != labels[0] {
				labels = append(labels, dir)
			}
		}
		return append(labels, "enter a path manually")
	case stepMaybe:
		return []string{"yes", "no"}
	}
	return nil
}

// View implements tea.Model.
func (w *Wizard) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(w.title()))
	b.WriteString("\n")

	if w.errText != "" {
		b.WriteString(styleError.Render(w.errText))
		b.WriteString("\n\n")
	}

	switch w.step {
	case stepSource, stepTarget, stepPath, stepMaybe:
		for i, label := range w.choices() {
			line := "  " + label
			if i == w.cursor {
				line = styleSelected.Render("> " + label)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	case stepUser, stepPathManual, stepName:
		b.WriteString(w.input.View())
		b.WriteString("\n")
	case stepVerifying:
		b.WriteString(fmt.Sprintf("checking %s for decks by %s...\n", w.spec.Source.Name(), w.spec.User))
	}

	b.WriteString("\n")
	b.WriteString(styleHint.Render("enter to confirm, esc to cancel"))
	return styleApp.Render(b.String())
}

func (w *Wizard) title() string {
	switch w.step {
	case stepSource:
		return "Which site should decks be downloaded from?"
	case stepUser:
		return fmt.Sprintf("Whose %s decks should be synced?", w.spec.Source.Name())
	case stepVerifying:
		return "Verifying user"
	case stepTarget:
		return "Which client should deck files be written for?"
	case stepPath:
		return "Where should deck files be saved?"
	case stepPathManual:
		return "Enter the output directory"
	case stepMaybe:
		return "Include maybeboard cards in the sideboard?"
	case stepName:
		return "Give this profile a name? (leave blank to skip)"
	}
	return ""
}
