package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/vicholz/chirp-web/engine"
)

// progressPrinter drains ch and renders it either as a live carriage-return
// bar (a real terminal) or as periodic plain lines (piped output, e.g. into
// a log file).
func progressPrinter(ch <-chan engine.ProgressEvent, quiet bool, out io.Writer) {
	if quiet {
		for range ch {
		}
		return
	}
	live := term.IsTerminal(int(os.Stderr.Fd()))
	var lastWhole int = -1
	for ev := range ch {
		whole := int(ev.Percent)
		if !live {
			if whole == lastWhole {
				continue
			}
			lastWhole = whole
			fmt.Fprintf(out, "%s: %d%% (%d/%d bytes)\n", ev.Phase, whole, ev.BytesDone, ev.BytesTotal)
			continue
		}
		fmt.Fprintf(out, "\r%s: %5.1f%% (%d/%d bytes)", ev.Phase, ev.Percent, ev.BytesDone, ev.BytesTotal)
	}
	if live {
		fmt.Fprintln(out)
	}
}
