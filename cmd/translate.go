package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate a word or sentence",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		storyID, _ := cmd.Flags().GetString("story")
		userID, _ := cmd.Flags().GetString("user")
		text := strings.Join(args, " ")
		isWord, _ := cmd.Flags().GetBool("word")
		if !cmd.Flags().Changed("word") {
			isWord = len(strings.Fields(text)) == 1
		}

		d, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.translator.Translate(cmd.Context(), translate.Request{
			Text:           text,
			SourceLanguage: from,
			TargetLanguage: to,
			IsWord:         isWord,
			StoryID:        storyID,
			UserID:         userID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s → %s\n", res.SourceText, res.TranslatedText)
		d.log.Debug("translation resolved", "origin", string(res.Origin), "id", res.ID)
		return nil
	},
}

var translateListCmd = &cobra.Command{
	Use:   "list <story-id>",
	Short: "List translations looked up while reading a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		list, err := d.translator.ListForStory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No translations for this story.")
			return nil
		}
		fmt.Printf("%-30s  %-30s  %-5s  %5s\n", "Source", "Translation", "Langs", "Uses")
		fmt.Println(strings.Repeat("─", 78))
		for _, t := range list {
			fmt.Printf("%-30s  %-30s  %-5s  %5d\n",
				truncate(t.SourceText, 30), truncate(t.TranslatedText, 30),
				t.SourceLanguage+"-"+t.TargetLanguage, t.UsageCount)
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().String("from", "en", "Source language code")
	translateCmd.Flags().String("to", "tr", "Target language code")
	translateCmd.Flags().String("story", "", "Story the text comes from")
	translateCmd.Flags().Bool("word", false, "Treat the text as a single word (default: guessed)")

	translateCmd.AddCommand(translateListCmd)
}
