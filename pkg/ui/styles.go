package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indexes; the terminal theme decides the exact shade
var (
	colorGreen   = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	colorRed     = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorYellow  = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	colorBlue    = lipgloss.AdaptiveColor{Light: "4", Dark: "4"}
	colorMagenta = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	colorCyan    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	colorGray    = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	colorText    = lipgloss.AdaptiveColor{Light: "7", Dark: "7"}
)

// Styles are rebuilt by SetTheme
var (
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleInfo    lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleAccent  lipgloss.Style // autosave notices
	StyleBold    lipgloss.Style

	StyleTitle  lipgloss.Style
	StyleHeader lipgloss.Style // file name above printed content

	StyleTableHeader lipgloss.Style
	StyleTableRow    lipgloss.Style
	StyleTableRowAlt lipgloss.Style
	StyleTableBorder lipgloss.Style
)

const (
	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
	IconSave    = "💾"
	IconOnline  = "●"
	IconOffline = "○"
)

func init() {
	SetTheme("auto")
}

// SetTheme applies "light", "dark" or "auto" (let lipgloss detect the background)
func SetTheme(theme string) {
	switch theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	StyleInfo = lipgloss.NewStyle().Foreground(colorCyan)
	StyleMuted = lipgloss.NewStyle().Foreground(colorGray)
	StyleAccent = lipgloss.NewStyle().Foreground(colorBlue)
	StyleBold = lipgloss.NewStyle().Bold(true)

	StyleTitle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true).Underline(true)
	StyleHeader = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)

	StyleTableHeader = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	StyleTableRow = lipgloss.NewStyle().Foreground(colorText)
	StyleTableRowAlt = StyleTableRow.Faint(true)
	StyleTableBorder = lipgloss.NewStyle().Foreground(colorGray)
}

func withIcon(style lipgloss.Style, icon, msg string) string {
	return style.Render(icon + " " + msg)
}

// FormatSuccess returns a success message with icon
func FormatSuccess(msg string) string { return withIcon(StyleSuccess, IconSuccess, msg) }

// FormatError returns an error message with icon
func FormatError(msg string) string { return withIcon(StyleError, IconError, msg) }

// FormatInfo returns an info message with icon
func FormatInfo(msg string) string { return withIcon(StyleInfo, IconInfo, msg) }

// FormatWarning returns a warning message with icon
func FormatWarning(msg string) string { return withIcon(StyleWarning, IconWarning, msg) }

// FormatSaved returns an autosave notice
func FormatSaved(msg string) string { return withIcon(StyleAccent, IconSave, msg) }

// FormatMode renders a connectivity mode badge
func FormatMode(mode string) string {
	switch mode {
	case "online":
		return withIcon(StyleSuccess, IconOnline, mode)
	case "expired":
		return withIcon(StyleWarning, IconOnline, mode)
	default:
		return withIcon(StyleMuted, IconOffline, mode)
	}
}

// FormatTitle returns a section title
func FormatTitle(title string) string {
	return StyleTitle.Render(title)
}

// FormatMuted returns de-emphasized text
func FormatMuted(text string) string {
	return StyleMuted.Render(text)
}
