package tui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/carmenstack/spatialmatch/internal/dedup"
)

// RunExplain renders a finished pipeline result: interactively via
// bubbletea when stdout is a terminal, or as plain text otherwise (piped
// output, CI, --plain).
func RunExplain(out dedup.Output, stdout io.Writer, forcePlain bool) error {
	if forcePlain || !isTTY(stdout) {
		return renderPlain(out, stdout)
	}

	f, ok := stdout.(*os.File)
	var opts []tea.ProgramOption
	if ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithAltScreen())

	program := tea.NewProgram(NewExplainModel(out), opts...)
	_, err := program.Run()
	return err
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func renderPlain(out dedup.Output, stdout io.Writer) error {
	fmt.Fprintf(stdout, "%d results, %d waste entries\n\n", len(out.Results), len(out.Waste))
	for i, r := range out.Results {
		fmt.Fprintf(stdout, "%3d. relev=%.4f scoredist=%.2f covers=%d\n", i+1, r.Relev, r.Scoredist, len(r.Covers))
		for _, c := range r.Covers {
			fmt.Fprintln(stdout, "     "+renderCoverLine(c))
		}
	}
	for _, w := range out.Waste {
		fmt.Fprintf(stdout, "waste: %v\n", w)
	}
	return nil
}
