package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
)

var (
	// ColorPurple is the color for purple
	ColorPurple = lipgloss.Color("99")
	// ColorBlue is the color for blue
	ColorBlue = lipgloss.Color("#00BFFF")
	// ColorHealthy is the color for values within their threshold
	ColorHealthy = lipgloss.Color("#00B894")
	// ColorAlert is the color for values that crossed their threshold
	ColorAlert = lipgloss.Color("#F4A261")
	// ColorGrey is the color for grey
	ColorGrey = lipgloss.Color("#666666")
	// ColorLightGrey is the color for light grey
	ColorLightGrey = lipgloss.Color("#999999")
	// ColorDebug is the color for debug
	ColorDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	// ColorInfo is the color for info
	ColorInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	// ColorWarn is the color for warn
	ColorWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("192"))
	// ColorWarning is the color for warning
	ColorWarning = lipgloss.Color("192")
	// ColorErrorValue is the color value for error
	ColorErrorValue = lipgloss.Color("204")
	// ColorError is the style for error
	ColorError = lipgloss.NewStyle().Foreground(ColorErrorValue)
	// ColorFatal is the color for fatal
	ColorFatal = lipgloss.NewStyle().Foreground(lipgloss.Color("134"))
	// ColorPanic is the color for panic
	ColorPanic = ColorFatal
	// TableHeaderStyle is the style for table headers
	TableHeaderStyle = lipgloss.NewStyle().Foreground(ColorPurple).Bold(true).Align(lipgloss.Center)
	// TableCellStyle is the style for table cells
	TableCellStyle = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Left)
	// SpinnerTitleStyle is the style for spinner titles
	SpinnerTitleStyle = lipgloss.NewStyle()

	// LogLevels styles - stolen from https://github.com/charmbracelet/log/blob/main/styles.go
	LogLevels = map[string]lipgloss.Style{
		zerolog.DebugLevel.String(): ColorDebug,
		zerolog.InfoLevel.String():  ColorInfo,
		zerolog.WarnLevel.String():  ColorWarn,
		zerolog.ErrorLevel.String(): ColorError,
		zerolog.FatalLevel.String(): ColorFatal,
		zerolog.PanicLevel.String(): ColorPanic,
	}
)

// RenderTable returns a styled table
func RenderTable(headers []string, rows [][]string, styleFunc func(row, col int) lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorPurple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	if styleFunc != nil {
		t.StyleFunc(styleFunc)
	}

	return t.Render()
}

// RenderKeyValueTable renders two columns of labels and values. Rows whose index is in highlight are
// rendered in the alert color
func RenderKeyValueTable(rows [][]string, highlight map[int]bool) string {
	return RenderTable([]string{"Metric", "Value"}, rows, func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return TableHeaderStyle
		}
		if col == 1 && highlight[row] {
			return TableCellStyle.Foreground(ColorAlert).Bold(true)
		}
		if col == 0 {
			return TableCellStyle.Foreground(ColorLightGrey)
		}
		return TableCellStyle
	})
}

// RenderHealthyString renders a string in the healthy color
func RenderHealthyString(message string, bold bool) string {
	return lipgloss.NewStyle().
		Bold(bold).
		Foreground(ColorHealthy).
		Render(message)
}

// RenderAlertString renders a string in the alert color
func RenderAlertString(message string, bold bool) string {
	return lipgloss.NewStyle().
		Bold(bold).
		Foreground(ColorAlert).
		Render(message)
}

// RenderWarningString renders a string in the warning color
func RenderWarningString(message string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning).
		Render(message)
}

// RenderBlueString renders a string in the blue color
func RenderBlueString(message string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBlue).
		Render(message)
}

// RenderPurpleString renders a string in the purple color
func RenderPurpleString(message string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPurple).
		Render(message)
}

// RenderGreyString renders a string in the grey color
func RenderGreyString(message string, bold bool) string {
	return lipgloss.NewStyle().
		Bold(bold).
		Foreground(ColorGrey).
		Render(message)
}

// RenderErrorString renders an error string in the error color
func RenderErrorString(s string) string {
	return lipgloss.NewStyle().Foreground(ColorErrorValue).Render(s)
}

// RenderErrorStringf renders an error string in the error color
func RenderErrorStringf(format string, a ...any) string {
	return RenderErrorString(fmt.Sprintf(format, a...))
}

// RenderHealthyStringf renders a string in the healthy color
func RenderHealthyStringf(format string, a ...any) string {
	return RenderHealthyString(fmt.Sprintf(format, a...), false)
}

// RenderAlertStringf renders a string in the alert color
func RenderAlertStringf(format string, a ...any) string {
	return RenderAlertString(fmt.Sprintf(format, a...), true)
}

// RenderWarningStringf renders a warning string in the warning color
func RenderWarningStringf(format string, a ...any) string {
	return RenderWarningString(fmt.Sprintf(format, a...))
}
