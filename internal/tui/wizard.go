package tui

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
)

// InitAnswers are the values "critpath init --interactive" asks for.
type InitAnswers struct {
	Name  string
	ID    string
	Start string
	Mode  string
}

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateProjectID accepts letters, digits, '-' and '_', starting with a
// letter or digit.
func ValidateProjectID(s string) error {
	if !projectIDPattern.MatchString(s) {
		return fmt.Errorf("invalid project ID %q: use letters, digits, '-' and '_'", s)
	}
	return nil
}

func validateStart(s string) error {
	_, err := calendar.ParseDate(s)
	return err
}

func validateName(s string) error {
	if s == "" {
		return errors.New("name is required")
	}
	return nil
}

// NewInitForm builds the init wizard. Answers are written into a as the
// user edits; its fields are the defaults shown.
func NewInitForm(a *InitAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&a.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Project ID").
				Description("Used as the file name and in API paths.").
				Value(&a.ID).
				Validate(ValidateProjectID),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD").
				Value(&a.Start).
				Validate(validateStart),
			huh.NewSelect[string]().
				Title("Calendar").
				Options(
					huh.NewOption("Calendar days", string(calendar.ModeCalendar)),
					huh.NewOption("Working days (Mon-Fri)", string(calendar.ModeWorkingDays)),
				).
				Value(&a.Mode),
		),
	).WithTheme(huhTheme()).WithWidth(72).WithShowHelp(true)
}

// RunInitWizard runs the form on the terminal, starting from defaults.
func RunInitWizard(defaults InitAnswers) (InitAnswers, error) {
	a := defaults
	if err := NewInitForm(&a).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return InitAnswers{}, errors.New("init cancelled")
		}
		return InitAnswers{}, err
	}
	return a, nil
}

func huhTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(ColorAccent).SetString("> ")
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorError)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ColorPrimary)
	t.Blurred = t.Focused
	t.Blurred.Base = t.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	return t
}
