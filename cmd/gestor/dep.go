package main

import (
	"context"
	"fmt"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/api"
	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:     "dep",
	Short:   "Manage task dependencies",
	GroupID: "deps",
}

var depAddCmd = &cobra.Command{
	Use:   "add <project> <predecessor> <successor>",
	Short: "Make successor wait for predecessor",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := planningClient.CreateDependency(context.Background(), &api.CreateDependencyRequest{
			ProjectID:     args[0],
			PredecessorID: args[1],
			SuccessorID:   args[2],
			CreatedBy:     actor,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), d)
		}
		printDependency(cmd.OutOrStdout(), d)
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:     "remove <project> <dependency>",
	Aliases: []string{"rm"},
	Short:   "Remove a dependency edge",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := planningClient.DeleteDependency(context.Background(), &api.DeleteDependencyRequest{
			ProjectID:    args[0],
			DependencyID: args[1],
			Actor:        actor,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[1]})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dependency %s removed\n", args[1])
		return nil
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <project> <task>",
	Short: "List the predecessors and successors of a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := planningClient.GetTaskDependencies(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), deps)
		}
		printTaskDependencies(cmd.OutOrStdout(), args[1], deps)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:     "graph <project>",
	Short:   "Show the dependency order of a project's tasks",
	GroupID: "deps",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := planningClient.GetProjectDependencyGraph(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), g)
		}
		printGraph(cmd.OutOrStdout(), g)
		return nil
	},
}

func init() {
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
}
