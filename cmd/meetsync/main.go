package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetsync",
		Short: "Headless virtual-classroom session client",
		Long: `meetsync connects to a classroom signaling server, subscribes to a
meeting channel, and keeps a live local copy of the meeting state:
the participant roster, the chat log, quiz questions, shared files,
and the active panel.

It is the session-sync core of the classroom client, runnable on its
own for monitoring, debugging, and load testing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		watchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
