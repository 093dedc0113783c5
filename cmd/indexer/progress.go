package main

import (
	"os"

	"codeberg.org/kbase/server/internal/indexer"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

func progressEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// returns a progress callback drawing a bar on stderr, plus a finish func.
// the bar is created lazily because the total is only known after listing.
func newProgress(enabled bool, description string) (indexer.ProgressFunc, func()) {
	if !enabled {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar

	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(32),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "=",
					SaucerHead:    ">",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}

		_ = bar.Set(done)
	}

	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}

	return progress, finish
}
