package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Comprehension quizzes",
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate <story-id>",
	Short: "Generate the quiz for a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		q, err := d.quizzes.GenerateForStory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printQuiz(q, false)
		return nil
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Print a quiz; --story looks it up by story instead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byStory, _ := cmd.Flags().GetBool("story")
		answers, _ := cmd.Flags().GetBool("answers")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		var q *model.Quiz
		if byStory {
			q, err = d.quizzes.GetForStory(cmd.Context(), args[0])
		} else {
			q, err = d.quizzes.Get(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		printQuiz(q, answers)
		return nil
	},
}

var quizSubmitCmd = &cobra.Command{
	Use:   "submit <quiz-id>",
	Short: "Submit answers, e.g. --answers 1=A,2=C,3=B,4=D,5=A",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser(cmd)
		if err != nil {
			return err
		}
		answers, _ := cmd.Flags().GetStringToString("answers")
		seconds, _ := cmd.Flags().GetInt("seconds")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		sub, err := d.quizzes.Submit(cmd.Context(), quiz.SubmitRequest{
			UserID:           userID,
			QuizID:           args[0],
			Answers:          answers,
			TimeSpentSeconds: seconds,
		})
		if err != nil {
			return err
		}

		for _, a := range sub.Result.Answers {
			mark := "✗"
			if a.IsCorrect {
				mark = "✓"
			}
			submitted := a.Submitted
			if submitted == "" {
				submitted = "-"
			}
			fmt.Printf("%s %d. %s  (you: %s, correct: %s)\n", mark, a.QuestionNumber, a.QuestionText, submitted, a.Correct)
			if !a.IsCorrect && a.Explanation != "" {
				fmt.Printf("     %s\n", a.Explanation)
			}
		}
		fmt.Printf("\nScore: %d/%d (%.1f%%)\n", sub.Result.Score, sub.Result.Total, sub.Result.Percentage)
		return nil
	},
}

var quizHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your recent quiz attempts",
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

		attempts, err := d.quizzes.History(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No quiz attempts yet.")
			return nil
		}
		fmt.Printf("%-19s  %-36s  %5s  %7s  %6s\n", "Completed", "Quiz", "Score", "Pct", "Secs")
		fmt.Println(strings.Repeat("─", 82))
		for _, a := range attempts {
			fmt.Printf("%-19s  %-36s  %2d/%-2d  %6.1f%%  %6d\n",
				a.CompletedAt.Local().Format("2006-01-02 15:04:05"), a.QuizID,
				a.Score, a.TotalQuestions, a.Percentage, a.TimeSpentSeconds)
		}
		return nil
	},
}

func printQuiz(q *model.Quiz, withAnswers bool) {
	fmt.Printf("%s  (%s)\n\n", q.Title, q.ID)
	for _, qq := range q.Questions {
		fmt.Printf("%d. %s\n", qq.QuestionNumber, qq.QuestionText)
		for _, l := range []string{"A", "B", "C", "D"} {
			fmt.Printf("   %s) %s\n", l, qq.Option(l))
		}
		if withAnswers {
			fmt.Printf("   Answer: %s", qq.CorrectAnswer)
			if qq.Explanation != "" {
				fmt.Printf(" (%s)", qq.Explanation)
			}
			fmt.Println()
		}
		fmt.Println()
	}
}

func init() {
	quizShowCmd.Flags().Bool("story", false, "Treat the argument as a story id")
	quizShowCmd.Flags().Bool("answers", false, "Reveal correct answers")

	quizSubmitCmd.Flags().StringToString("answers", nil, "Answers keyed by question number")
	quizSubmitCmd.Flags().Int("seconds", 0, "Time spent on the quiz, in seconds")

	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizSubmitCmd)
	quizCmd.AddCommand(quizHistoryCmd)
}
