// commitcast - narrated git history
//
// Replays a commit as a spoken code walkthrough: an LLM explains each
// change while the audio stays in sync with the typing animation's
// timeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "commitcast",
	Short: "commitcast - narrated git history",
	Long: `commitcast replays git commits as narrated code walkthroughs.
An AI explains what changed and why, voiced by text-to-speech, timed to
the diff's typing animation.

  commitcast narrate                      Narrate HEAD of the current repo
  commitcast narrate -c abc123 --play     Narrate a commit and play the audio
  commitcast history                      List past narration runs
  commitcast cache                        Show narration cache statistics`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
