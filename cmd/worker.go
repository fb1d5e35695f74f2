package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background maintenance until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		w := worker.New(d.stories, d.cfg.Worker, d.log)
		if once {
			n, err := w.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Failed %d stale stories.\n", n)
			return nil
		}

		ctx := cmd.Context()
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		w.Stop()
		return nil
	},
}

func init() {
	workerCmd.Flags().Bool("once", false, "Run a single sweep and exit")
}
