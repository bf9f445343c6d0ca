package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/commitcast/commitcast"
	"github.com/commitcast/commitcast/internal/config"
	"github.com/commitcast/commitcast/internal/orchestrator"
	"github.com/commitcast/commitcast/model"
)

var (
	narrateCommit     string
	narrateSpeed      int
	narratePath       string
	narrateVoiceover  bool
	narrateElevenLabs bool
	narrateProvider   string
	narratePlay       bool
	narrateNoCache    bool
)

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Generate narration for a commit",
	Long: `Generate a narrated walkthrough of one commit. Each file's diff is
grouped into logical chunks, explained by the language model, and
synthesized to speech sized to the typing animation's duration.

Example:
  commitcast narrate
  commitcast narrate --commit HEAD~3 --play
  commitcast narrate --elevenlabs --speed 50`,
	RunE: runNarrate,
}

func init() {
	narrateCmd.Flags().StringVarP(&narrateCommit, "commit", "c", "", "Commit to narrate (default HEAD)")
	narrateCmd.Flags().IntVarP(&narrateSpeed, "speed", "s", 0, "Typing speed in milliseconds per character (overrides config file)")
	narrateCmd.Flags().StringVarP(&narratePath, "path", "p", ".", "Path to the git repository")
	narrateCmd.Flags().BoolVar(&narrateVoiceover, "voiceover", true, "Enable voiceover narration (--voiceover=false to opt out)")
	narrateCmd.Flags().BoolVar(&narrateElevenLabs, "elevenlabs", false, "Use ElevenLabs TTS instead of Inworld")
	narrateCmd.Flags().StringVar(&narrateProvider, "voiceover-provider", "", "Voiceover provider: elevenlabs or inworld (overrides config file)")
	narrateCmd.Flags().BoolVar(&narratePlay, "play", false, "Play the narration after generating it")
	narrateCmd.Flags().BoolVar(&narrateNoCache, "no-cache", false, "Bypass the narration cache")
	rootCmd.AddCommand(narrateCmd)
}

func runNarrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if narrateSpeed > 0 {
		cfg.SpeedMS = narrateSpeed
	}

	vc := &cfg.Voiceover
	vc.Enabled = narrateVoiceover
	if narrateElevenLabs {
		vc.Provider = model.ProviderElevenLabs
		vc.Enabled = true
	}
	if narrateProvider != "" {
		vc.Provider = config.ParseProvider(narrateProvider, vc.Provider)
	}
	config.FinalizeVoiceover(vc)

	if !vc.Enabled {
		fmt.Println("Voiceover disabled; nothing to narrate.")
		return nil
	}
	if !setupKeys(vc) {
		fmt.Println("Voiceover not configured; nothing to narrate.")
		return nil
	}

	builder := commitcast.NewBuilder().WithConfig(cfg).WithRepo(narratePath)
	if narrateNoCache {
		builder = builder.WithoutCache()
	}
	n, err := builder.Build()
	if err != nil {
		return fmt.Errorf("initializing narrator: %w", err)
	}
	defer n.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCancelling...")
		cancel()
	}()

	commit, err := n.LoadCommit(ctx, narrateCommit)
	if err != nil {
		return err
	}
	fmt.Printf("Narrating %s (%d files changed)\n", commit.Hash, len(commit.Files))
	if first := firstLine(commit.Message); first != "" {
		fmt.Printf("  %s\n", first)
	}

	job := n.Start(ctx, commit)
	chunks := watchJob(n, job)
	if len(chunks) == 0 {
		fmt.Println("No narration produced.")
		return nil
	}
	printChunks(chunks)

	if narratePlay {
		play(ctx, n, chunks)
	}
	return nil
}

// watchJob redraws a one-line progress status until the job finishes.
func watchJob(n *commitcast.Narrator, job *orchestrator.Job) []model.DiffChunk {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if chunks, done := job.Poll(); done {
			fmt.Printf("\r%-70s\r", "")
			return chunks
		}
		<-ticker.C
		status, ratio := n.Progress()
		fmt.Printf("\r[%3.0f%%] %-60s", ratio*100, status)
	}
}

func printChunks(chunks []model.DiffChunk) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tHUNKS\tANIM\tAUDIO")
	for _, c := range chunks {
		audio := "-"
		if c.HasAudio {
			audio = fmt.Sprintf("%.1fs", c.AudioDurationSecs)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1fs\t%s\n",
			c.ChunkID, c.FilePath, len(c.HunkIndices), c.EstimatedDurationSecs, audio)
	}
	w.Flush()
}

// play walks the chunks in order, letting each narration finish before
// triggering the next, the way playback follows the typing animation.
func play(ctx context.Context, n *commitcast.Narrator, chunks []model.DiffChunk) {
	fmt.Println("\nPlaying narration (Ctrl-C to stop)...")
	for _, c := range chunks {
		if ctx.Err() != nil {
			return
		}
		fmt.Printf("  > %s [chunk %d] %.1fs\n", c.FilePath, c.ChunkID, c.AudioDurationSecs)
		n.Trigger(c.ChunkID)
		if !waitFinished(ctx, n, c.ChunkID, c.AudioDurationSecs) {
			return
		}
	}
}

// waitFinished polls for the chunk's completion. A sink failure never
// reports completion, so give up once the clock says the audio is over.
func waitFinished(ctx context.Context, n *commitcast.Narrator, id int, secs float64) bool {
	deadline := time.After(time.Duration(secs*float64(time.Second)) + 2*time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return true
		case <-ticker.C:
			for _, fin := range n.PollFinished() {
				if fin == id {
					return true
				}
			}
		}
	}
}

// setupKeys walks the interactive key setup: config file, then
// environment, then prompt. Returns false when the user opts out.
func setupKeys(vc *model.VoiceoverConfig) bool {
	if vc.OpenAIAPIKey == "" {
		vc.OpenAIAPIKey = promptForKey(
			"OpenAI API key (for GPT-5.2 explanations)",
			"https://platform.openai.com/api-keys",
			"openai_api_key",
		)
		if vc.OpenAIAPIKey == "" {
			return false
		}
	}
	if vc.APIKey == "" {
		label, url := "Inworld API key (for text-to-speech)", "https://inworld.ai  →  API  →  Basic Auth key"
		if vc.Provider == model.ProviderElevenLabs {
			label, url = "ElevenLabs API key (for text-to-speech)", "https://elevenlabs.io/app/settings/api-keys"
		}
		vc.APIKey = promptForKey(label, url, "api_key")
		if vc.APIKey == "" {
			return false
		}
	}

	// Narration requires the language model; persist the enablement so
	// the next run skips setup.
	vc.UseLLMExplanations = true
	_ = config.EnableVoiceover()
	_ = config.SaveVoiceoverKey("use_llm_explanations", "true")
	return true
}

// promptForKey asks for an API key on stdin and persists a pasted key to
// the config file. Non-interactive runs skip straight to opting out.
func promptForKey(label, helpURL, field string) string {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return ""
	}

	fmt.Println()
	fmt.Printf("commitcast needs your %s to enable voiceover.\n", label)
	fmt.Printf("  Get yours at: %s\n", helpURL)
	fmt.Print("  Paste key (or press Enter to skip): ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ""
	}
	key := strings.TrimSpace(line)
	if key == "" {
		fmt.Println("  Skipping voiceover.")
		return ""
	}
	if err := config.SaveVoiceoverKey(field, key); err != nil {
		fmt.Printf("  Warning: could not save key to config: %v\n", err)
	} else {
		fmt.Println("  Saved to ~/.config/commitcast/config.toml")
	}
	return key
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
