package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

// termMu synchronizes all terminal output so the status line's cursor
// save/restore is never interleaved with a log write.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// IsInteractive reports whether stdout is a terminal. The dashboard is only
// drawn when it is.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type termWriter struct {
	w io.Writer
}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return tw.w.Write(p)
}

// NewTermWriter returns an io.Writer for log.SetOutput() that writes to
// stderr, serialised with PrintLiveStatus.
func NewTermWriter() io.Writer {
	return termWriter{w: os.Stderr}
}

func PrintBanner() {
	fmt.Print("\033[2J\033[H")

	banner := `
    __    ___   __  ___   ____________  ____  ___    ____
   / /   /   | / / / / | / / ____/ / / / __ \/   |  / __ \
  / /   / /| |/ / / /  |/ / /   / /_/ / /_/ / /| | / / / /
 / /___/ ___ / /_/ / /|  / /___/ __  / ____/ ___ |/ /_/ /
/_____/_/  |_\____/_/ |_/\____/_/ /_/_/   /_/  |_/_____/

            >> BUSINESS FORMATION PLANNER <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

func InitializeTerminal() {
	// Banner: 1-9, status: 10, logs scroll from 12.
	fmt.Print("\033[12;r")
	fmt.Print("\033[12;1H")
}

func CleanupTerminal() {
	fmt.Print("\033[r\033[2J\033[H")
}

// PrintLiveStatus redraws the status line on row 10.
func PrintLiveStatus() {
	st := GetStatus()

	pulseIcon, pulseColor := "🟢", colorNeonCyan
	if time.Since(st.LastHeartbeat) > 90*time.Second {
		pulseIcon, pulseColor = "🔴", colorNeonMag
	}

	activity := "idle"
	if st.ActiveSession != "" {
		activity = fmt.Sprintf("%s @ %s", st.ActiveSession, st.ActiveStep)
	}
	if len(activity) > 40 {
		activity = activity[:37] + "..."
	}

	line := fmt.Sprintf(
		"\033[s\033[10;1H\033[K%s%s %s[%s]%s runs ok=%d failed=%d | up %v\033[u",
		pulseColor, pulseIcon,
		colorPurple, activity, colorReset,
		st.RunsCompleted, st.RunsFailed,
		time.Since(startTime).Round(time.Second),
	)

	termMu.Lock()
	fmt.Print(line)
	termMu.Unlock()
}
