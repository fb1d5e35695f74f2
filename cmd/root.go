package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/apperr"
)

var rootCmd = &cobra.Command{
	Use:   "engreader",
	Short: "AI reading practice for English learners",
	Long: "engreader generates graded reading stories around the words a learner is studying, " +
		"quizzes them on what they read, translates words on demand, and tracks their progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
	}
	return err
}

// userMessage hides internal detail for domain errors. Other errors come
// from flag parsing or setup and are shown as is.
func userMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return apperr.Public(err)
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ENGREADER_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Load environment variables from this file when it exists")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Acting user id")

	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func requireUser(cmd *cobra.Command) (string, error) {
	u, _ := cmd.Flags().GetString("user")
	if u == "" {
		return "", fmt.Errorf("--user is required")
	}
	return u, nil
}
