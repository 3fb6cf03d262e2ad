package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"fleetgear/internal/api"
	fgstrings "fleetgear/pkg/strings"
)

const progressSuffixLen = 80

// ShowProgress runs fn while a spinner on w shows the latest status
// message. fn receives the callback to pass as orchestrator progress. In
// quiet mode fn gets nil and no spinner is drawn.
func ShowProgress(w io.Writer, quiet bool, initial string, fn func(progress func(api.StatusEntry)) error) error {
	if quiet {
		return fn(nil)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + initial
	s.Start()
	defer s.Stop()

	return fn(func(entry api.StatusEntry) {
		s.Lock()
		s.Suffix = " " + fgstrings.Head(entry.Message, progressSuffixLen)
		s.Unlock()
	})
}
