package outwriter

import (
	"os"

	"github.com/huangsam/peerrank/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableTitleWidth calculates the maximum width for titles in table output
// based on terminal width and the fixed columns of the widest table.
func GetMaxTableTitleWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Seeders + Leechers + Peers + Change + Prev with borders/padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
