package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// The watch command is a read-only terminal spectator, the same role a
// shared TV display plays: faster poll cadence, full redaction unless a
// host credential is supplied.

func newWatchCmd() *cobra.Command {
	var (
		server   string
		hostID   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:           "watch <code>",
		Short:         "Follow a game from the terminal.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			poller := newPoller(server, args[0], hostID, interval)

			return poller.Run(cmd.Context(), func(view StatusView) {
				fmt.Print(renderBoard(view))
			})
		},
	}

	fs := cmd.Flags()

	fs.StringVar(&server, "server", "http://localhost:8080", "base URL of the feud server")
	fs.StringVar(&hostID, "host-id", "", "host credential, to preview unrevealed answers")
	fs.DurationVar(&interval, "interval", 1500*time.Millisecond, "poll interval")

	return cmd
}

func renderBoard(view StatusView) string {
	var board strings.Builder

	// Clear the terminal and redraw from scratch; each snapshot fully
	// replaces the previous one.
	board.WriteString("\033[2J\033[H")

	board.WriteString(fmt.Sprintf("=== FEUD %s ===\n\n", view.Code))

	switch view.Status {
	case StatusWaiting:
		board.WriteString("Waiting for the host to start the game...\n")
		board.WriteString(fmt.Sprintf("%d question(s) ready\n", view.TotalQuestions))

	case StatusCompleted:
		board.WriteString("Game over!\n")
		board.WriteString(fmt.Sprintf("Final score: %d\n", view.Score))

	case StatusPlaying:
		index := 0
		if view.CurrentIndex != nil {
			index = *view.CurrentIndex
		}

		board.WriteString(fmt.Sprintf("Question %d of %d\n", index+1, view.TotalQuestions))

		if view.Question != nil {
			board.WriteString(view.Question.Text + "\n")
		}
		board.WriteString("\n")

		for i, slot := range view.Answers {
			weight := 0
			if slot.Weight != nil {
				weight = *slot.Weight
			}

			switch {
			case slot.Revealed:
				board.WriteString(fmt.Sprintf("%2d. %-30s %3d\n", i+1, slot.Text, weight))
			case slot.Text != "":
				// Host preview of an unrevealed answer.
				board.WriteString(fmt.Sprintf("%2d. (%s: %d)\n", i+1, slot.Text, weight))
			default:
				board.WriteString(fmt.Sprintf("%2d. %s\n", i+1, "• • • • •"))
			}
		}

		board.WriteString(fmt.Sprintf("\nScore: %d\n", view.Score))
		board.WriteString("Strikes: ")
		for i := 0; i < view.MaxStrikes; i++ {
			if i < view.Strikes {
				board.WriteString("X ")
			} else {
				board.WriteString("- ")
			}
		}
		board.WriteString("\n")
	}

	return board.String()
}
