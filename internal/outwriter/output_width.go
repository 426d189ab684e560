package outwriter

import (
	"os"

	"github.com/huangsam/snapguard/internal/contract"
	"golang.org/x/term"
)

// Bounds of a single identity column in table output.
const (
	minIdentityWidth = 15
	maxIdentityWidth = 60
)

// getMaxIdentityWidth calculates the maximum width of each identity column
// (project, plugin, dependency) based on terminal width.
func getMaxIdentityWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Borders, separators and padding of a three column table
	available := (termWidth - 10) / 3
	if available < minIdentityWidth {
		return minIdentityWidth
	}
	if available > maxIdentityWidth {
		return maxIdentityWidth
	}
	return available
}
