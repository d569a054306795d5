package main

import (
	"context"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/spf13/cobra"
)

var sprintCmd = &cobra.Command{
	Use:     "sprint",
	Short:   "Sprint operations",
	GroupID: "sprints",
}

var sprintCloneCmd = &cobra.Command{
	Use:   "clone <project> <sprint>",
	Short: "Copy a sprint, optionally with its tasks, into a new sprint",
	Long: `Copy a sprint into a new sprint of the same or another project of the
same company. Copied tasks start in BACKLOG with no logged hours; tags are
matched by name in the target project. Dependency edges are not copied.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		target, _ := cmd.Flags().GetString("target")
		noTasks, _ := cmd.Flags().GetBool("no-tasks")
		shift, _ := cmd.Flags().GetInt("shift")

		include := !noTasks
		s, err := planningClient.CloneSprint(context.Background(), &api.CloneSprintRequest{
			ProjectID:       args[0],
			SprintID:        args[1],
			Name:            name,
			TargetProjectID: target,
			IncludeTasks:    &include,
			ShiftDays:       shift,
			Actor:           actor,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), s)
		}
		printSprint(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	sprintCloneCmd.Flags().String("name", "", `name of the copy (default "<name> (Copy)")`)
	sprintCloneCmd.Flags().String("target", "", "target project (default the source project)")
	sprintCloneCmd.Flags().Bool("no-tasks", false, "copy the sprint without its tasks")
	sprintCloneCmd.Flags().Int("shift", 0, "days to move the sprint window by")

	sprintCmd.AddCommand(sprintCloneCmd)
}
