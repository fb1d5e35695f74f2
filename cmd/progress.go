package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/model"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Reading progress and learner events",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your reading statistics",
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

		p, err := d.progress.Get(cmd.Context(), userID)
		if err != nil {
			return err
		}

		last := "never"
		if p.LastReadingDate != nil {
			last = p.LastReadingDate.Local().Format("2006-01-02")
		}
		fmt.Printf("Level:               %s\n", p.CurrentLevel)
		fmt.Printf("Stories read:        %d\n", p.TotalStoriesRead)
		fmt.Printf("Reading time:        %d min\n", p.TotalReadingMinutes)
		fmt.Printf("Words learned:       %d\n", p.TotalWordsLearned)
		fmt.Printf("Translations viewed: %d\n", p.TotalTranslationsViewed)
		fmt.Printf("Quizzes completed:   %d (avg %.1f%%)\n", p.TotalQuizzesCompleted, p.AverageQuizScore)
		fmt.Printf("Streak:              %d day(s), last read %s\n", p.CurrentStreakDays, last)

		limit, _ := cmd.Flags().GetInt("events")
		if limit <= 0 {
			return nil
		}
		events, err := d.store.EventRepo().ListUserEvents(cmd.Context(), userID, limit)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		if len(events) > 0 {
			fmt.Println()
			fmt.Println("Recent events")
			fmt.Println(strings.Repeat("─", 60))
			for _, e := range events {
				fmt.Printf("%-19s  %-14s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.EventType, e.EventData)
			}
		}
		return nil
	},
}

var progressTrackCmd = &cobra.Command{
	Use:   "track <event-type>",
	Short: "Record a learner event (WordTap, SentencePress, StoryComplete, QuizComplete)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		data, _ := cmd.Flags().GetString("data")
		storyID, _ := cmd.Flags().GetString("story")
		quizID, _ := cmd.Flags().GetString("quiz")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		e := &model.UserEvent{UserID: userID, EventType: args[0], EventData: data}
		if storyID != "" {
			e.StoryID = &storyID
		}
		if quizID != "" {
			e.QuizID = &quizID
		}
		if err := d.progress.TrackEvent(cmd.Context(), e); err != nil {
			return err
		}
		fmt.Println("Recorded", e.ID)
		return nil
	},
}

func init() {
	progressShowCmd.Flags().Int("events", 0, "Also list this many recent events")

	progressTrackCmd.Flags().String("data", "", "Event payload (free-form JSON)")
	progressTrackCmd.Flags().String("story", "", "Related story id")
	progressTrackCmd.Flags().String("quiz", "", "Related quiz id")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressTrackCmd)
}
