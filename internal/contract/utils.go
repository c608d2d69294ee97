package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/peerrank/schema"
)

// Color variables for console output.
var (
	UpColor   = color.New(color.FgGreen, color.Bold)  // UpColor marks titles that climbed.
	DownColor = color.New(color.FgRed)                // DownColor marks titles that dropped.
	NewColor  = color.New(color.FgYellow, color.Bold) // NewColor marks titles without a baseline.
)

// GetPlainLabel returns the plain text label of a rank change.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(change schema.RankChange) string {
	switch change.Direction() {
	case schema.UpDirection:
		return "▲ " + change.String()
	case schema.DownDirection:
		return "▼ " + change.String()
	case schema.NewDirection:
		return "NEW"
	default:
		return "="
	}
}

// GetColorLabel returns a colored rank change label for console output (table).
func GetColorLabel(change schema.RankChange) string {
	text := GetPlainLabel(change)

	switch change.Direction() {
	case schema.UpDirection:
		return UpColor.Sprint(text)
	case schema.DownDirection:
		return DownColor.Sprint(text)
	case schema.NewDirection:
		return NewColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// TruncateTitle truncates a title to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateTitle(title string, maxWidth int) string {
	runes := []rune(title)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return title
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
