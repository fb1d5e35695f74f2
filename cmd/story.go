package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/model"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Generate and read stories",
}

var storyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a story around target words",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		levelStr, _ := cmd.Flags().GetString("level")
		level, err := model.ParseLevel(levelStr)
		if err != nil {
			return err
		}
		topic, _ := cmd.Flags().GetString("topic")
		words, _ := cmd.Flags().GetStringSlice("words")
		length, _ := cmd.Flags().GetInt("length")
		withQuiz, _ := cmd.Flags().GetBool("quiz")

		d, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		out, err := d.stories.Generate(cmd.Context(), userID, model.GenerationRequest{
			Level:       level,
			Topic:       topic,
			TargetWords: words,
			WordCount:   length,
		}, withQuiz)
		if err != nil {
			return err
		}

		printStory(out.Story)
		if out.Quiz != nil {
			fmt.Printf("\nQuiz %s ready with %d questions.\n", out.Quiz.ID, len(out.Quiz.Questions))
		}
		return nil
	},
}

var storyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your stories, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		list, err := d.stories.List(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No stories yet.")
			return nil
		}

		fmt.Printf("%-36s  %-3s  %-10s  %-30s  %5s  %6s  %s\n",
			"ID", "Lvl", "Status", "Title", "Words", "Usage", "Read")
		fmt.Println(strings.Repeat("─", 110))
		for _, s := range list {
			read := ""
			if s.IsCompleted {
				read = "✓"
			}
			fmt.Printf("%-36s  %-3s  %-10s  %-30s  %5d  %5.0f%%  %s\n",
				s.ID, s.Level, s.Status, truncate(s.Title, 30), s.WordCount, s.UsagePercentage, read)
		}
		return nil
	},
}

var storyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.stories.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printStory(s)
		return nil
	},
}

var storyCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a story as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		seconds, _ := cmd.Flags().GetInt("seconds")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.stories.Complete(cmd.Context(), userID, args[0], seconds)
		if err != nil {
			return err
		}
		fmt.Printf("Completed %q in %ds.\n", s.Title, s.ReadingSeconds)
		return nil
	},
}

var storyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.stories.Delete(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func printStory(s *model.Story) {
	sep := strings.Repeat("─", 60)
	fmt.Printf("ID:        %s\n", s.ID)
	fmt.Printf("Title:     %s\n", s.Title)
	fmt.Printf("Level:     %s  Topic: %s\n", s.Level, s.Topic)
	fmt.Printf("Status:    %s\n", s.Status)
	fmt.Printf("Targets:   %s\n", strings.Join(s.TargetWords, ", "))
	if s.Status == model.StatusGenerated {
		fmt.Printf("Usage:     %d/%d (%.1f%%)\n", s.TargetWordsUsed, s.TargetWordCount, s.UsagePercentage)
		fmt.Printf("Length:    %d words, ~%d min\n", s.WordCount, s.ReadingMinutes)
		fmt.Println(sep)
		fmt.Println(s.Content)
		fmt.Println(sep)
	}
}

func init() {
	storyGenerateCmd.Flags().StringP("level", "l", "B1", "CEFR level (A1-C2)")
	storyGenerateCmd.Flags().StringP("topic", "t", "", "Story topic")
	storyGenerateCmd.Flags().StringSliceP("words", "w", nil, "Target words, comma separated")
	storyGenerateCmd.Flags().Int("length", model.DefaultWordCount, "Approximate story length in words")
	storyGenerateCmd.Flags().Bool("quiz", false, "Also generate a comprehension quiz")

	storyCompleteCmd.Flags().Int("seconds", 0, "Time spent reading, in seconds")

	storyCmd.AddCommand(storyGenerateCmd)
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyShowCmd)
	storyCmd.AddCommand(storyCompleteCmd)
	storyCmd.AddCommand(storyDeleteCmd)
}
