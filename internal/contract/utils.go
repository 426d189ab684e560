package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Verdict label constants.
const (
	PassValue = "PASS" // Release may proceed
	FailValue = "FAIL" // Release is blocked
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen, color.Bold) // PassColor marks a clean reactor.
	FailColor = color.New(color.FgRed, color.Bold)   // FailColor marks a blocked release.
	InfoColor = color.New(color.FgCyan)              // InfoColor highlights identities in summaries.
)

// GetPlainVerdict returns a plain text label for the verdict.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainVerdict(passed bool) string {
	if passed {
		return PassValue
	}
	return FailValue
}

// GetColorVerdict returns a colored verdict label for console output.
func GetColorVerdict(passed bool) string {
	text := GetPlainVerdict(passed)
	if passed {
		return PassColor.Sprint(text)
	}
	return FailColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
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

// GetHistoryDBFilePath returns the path to the SQLite DB file for check history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".snapguard_history.db"
	}
	return filepath.Join(homeDir, ".snapguard_history.db")
}

// TruncateIdentity shortens an artifact identity to maxWidth, keeping its tail.
// The version lives at the end of an identity, so the head is dropped first.
// Requires maxWidth > 3 so that the "..." prefix leaves room for content.
func TruncateIdentity(identity string, maxWidth int) string {
	runes := []rune(identity)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return identity
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
