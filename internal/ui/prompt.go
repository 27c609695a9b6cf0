package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// PromptTheme returns the pgtc theme for huh forms.
func PromptTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorMuted)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		SetString("> ")

	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	return t
}

// Confirm prompts for yes/no confirmation.
func Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue

	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&result).
		WithTheme(PromptTheme()).
		Run()

	return result, err
}

// ConnectionDetails holds the fields "pgtc init" prompts for and writes
// out as a DATABASE_URL line in a .env file.
type ConnectionDetails struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// ConnectionForm prompts for the Postgres connection "pgtc init" will
// persist to .env, pre-filling from defaults when non-nil.
func ConnectionForm(defaults *ConnectionDetails) (*ConnectionDetails, error) {
	if defaults == nil {
		defaults = &ConnectionDetails{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "prefer",
		}
	}

	details := &ConnectionDetails{}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Value(&details.Host).
				Placeholder(defaults.Host),

			huh.NewInput().
				Title("Port").
				Value(&details.Port).
				Placeholder(defaults.Port).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					var port int
					if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
						return errors.New("invalid port number")
					}
					if port < 1 || port > 65535 {
						return errors.New("port must be between 1 and 65535")
					}
					return nil
				}),

			huh.NewInput().
				Title("Database").
				Value(&details.Database).
				Placeholder("postgres"),

			huh.NewInput().
				Title("User").
				Value(&details.User).
				Placeholder("postgres"),

			huh.NewInput().
				Title("Password").
				Value(&details.Password).
				EchoMode(huh.EchoModePassword),

			huh.NewSelect[string]().
				Title("SSL Mode").
				Options(
					huh.NewOption("Disable", "disable"),
					huh.NewOption("Prefer", "prefer"),
					huh.NewOption("Require", "require"),
				).
				Value(&details.SSLMode),
		),
	).WithTheme(PromptTheme())

	if err := form.Run(); err != nil {
		return nil, err
	}

	if details.Host == "" {
		details.Host = defaults.Host
	}
	if details.Port == "" {
		details.Port = defaults.Port
	}
	if details.SSLMode == "" {
		details.SSLMode = defaults.SSLMode
	}

	return details, nil
}

// DatabaseURL renders details as a postgres:// connection URL, suitable
// for writing into a .env file's DATABASE_URL entry.
func (d ConnectionDetails) DatabaseURL() string {
	userinfo := d.User
	if d.Password != "" {
		userinfo = fmt.Sprintf("%s:%s", d.User, d.Password)
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", userinfo, d.Host, d.Port, d.Database, d.SSLMode)
}
