package cmd

import (
	"github.com/hashhedge/workflow/src/utils/logger"
	"github.com/hashhedge/workflow/src/workflow"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(workflowCmd)
}

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run the contract workflow controller",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("workflow-cmd")

		controller, err := workflow.NewController(conf)
		if err != nil {
			log.WithError(err).Error("Failed to initialize the workflow controller")
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-ctx.Done():
		}

		controller.StopWait()
		return
	},
}
