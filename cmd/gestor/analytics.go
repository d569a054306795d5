package main

import (
	"context"
	"fmt"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/calendar"
	"github.com/spf13/cobra"
)

var burndownCmd = &cobra.Command{
	Use:     "burndown <project> <sprint>",
	Short:   "Show the burndown of a sprint",
	GroupID: "analytics",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &api.BurndownRequest{ProjectID: args[0], SprintID: args[1]}
		if s, _ := cmd.Flags().GetString("as-of"); s != "" {
			d, err := calendar.Parse(s)
			if err != nil {
				return fmt.Errorf("--as-of: %w", err)
			}
			req.AsOf = &d
		}

		b, err := planningClient.GetSprintBurndown(context.Background(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), b)
		}
		printBurndown(cmd.OutOrStdout(), b)
		return nil
	},
}

var burndownsCmd = &cobra.Command{
	Use:     "burndowns <project>",
	Short:   "Summarize the burndown of every sprint in a project",
	GroupID: "analytics",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active, _ := cmd.Flags().GetBool("active")
		bs, err := planningClient.GetProjectBurndowns(context.Background(), &api.BurndownsRequest{
			ProjectID:  args[0],
			ActiveOnly: active,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), bs)
		}
		printBurndownList(cmd.OutOrStdout(), bs)
		return nil
	},
}

var velocityCmd = &cobra.Command{
	Use:     "velocity <project>",
	Short:   "Show the velocity history and forecast of a project",
	GroupID: "analytics",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		r, err := planningClient.GetProjectVelocity(context.Background(), &api.VelocityRequest{
			ProjectID:     args[0],
			IncludeActive: all,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		printVelocity(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	burndownCmd.Flags().String("as-of", "", "reference date (YYYY-MM-DD, default today)")
	burndownsCmd.Flags().Bool("active", false, "only sprints in progress")
	velocityCmd.Flags().Bool("all", false, "include sprints that have not ended")
}
