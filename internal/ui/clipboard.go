package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// CopyToClipboard writes text to the system clipboard with an OSC 52
// escape sequence on the controlling terminal. Failures are local and
// non-fatal; the caller surfaces them as a status message only.
func CopyToClipboard(text string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	defer tty.Close()

	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	osc52 := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)

	// tmux needs the escape wrapped in a DCS passthrough.
	inTmux := os.Getenv("TMUX") != "" ||
		strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
		strings.HasPrefix(os.Getenv("TERM"), "screen")

	if inTmux {
		if _, err := fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", osc52); err != nil {
			return err
		}
		return nil
	}

	_, err = tty.WriteString(osc52)
	return err
}
