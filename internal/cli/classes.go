package cli

import (
	"context"
	"fmt"

	"github.com/annohub/anno/internal/core"
	"github.com/annohub/anno/internal/report"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	classesProject int
	classesVerbose bool
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Manage the cached class catalog",
	Long: `Manage the local copy of a project's annotation classes and the team's
templates. Resolution, upload and conversion work against this cache.

Examples:
  anno classes pull          Fetch classes and templates from the platform
  anno classes list -v       Show cached classes with attribute groups`,
}

var classesPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch and cache the class catalog",
	Args:  cobra.NoArgs,
	Run:   runClassesPull,
}

var classesPushCmd = &cobra.Command{
	Use:   "push <classes.json>",
	Short: "Create classes from a classes JSON file",
	Long: `Create the classes listed in a classes JSON file in the project and
refresh the cached catalog. Classes whose name already exists are left as
they are.`,
	Args: cobra.ExactArgs(1),
	Run:  runClassesPush,
}

var classesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached classes",
	Args:  cobra.NoArgs,
	Run:   runClassesList,
}

func init() {
	classesCmd.PersistentFlags().IntVarP(&classesProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
	classesListCmd.Flags().BoolVarP(&classesVerbose, "verbose", "v", false, "Show attribute groups and attributes")

	classesCmd.AddCommand(classesPullCmd)
	classesCmd.AddCommand(classesPushCmd)
	classesCmd.AddCommand(classesListCmd)
}

func runClassesPull(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	projectID := c.projectID(classesProject)
	result, err := core.PullCatalog(context.Background(), c.Store, c.Client, projectID)
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Pulled %d class(es) and %d template(s) for project %d\n", result.Classes, result.Templates, projectID)
}

func runClassesPush(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	projectID := c.projectID(classesProject)
	n, err := core.PushClasses(context.Background(), c.Store, c.Client, projectID, args[0])
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Sent %d class(es) to project %d; catalog refreshed\n", n, projectID)
}

func runClassesList(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	rep := report.New(logger)
	catalog, err := core.LoadCatalog(c.Store, c.projectID(classesProject), rep)
	if err != nil {
		exitError("%v", err)
	}

	cyan := color.New(color.FgCyan)
	for _, cls := range catalog.Classes() {
		cyan.Printf("%6d", cls.ID)
		fmt.Printf("  %s  (%d group(s))\n", cls.Name, len(cls.AttributeGroups))
		if !classesVerbose {
			continue
		}
		for _, g := range cls.AttributeGroups {
			fmt.Printf("          %s [%d]:", g.Name, g.ID)
			for _, a := range g.Attributes {
				fmt.Printf(" %s=%d", a.Name, a.ID)
			}
			fmt.Println()
		}
	}

	yellow := color.New(color.FgYellow)
	for _, w := range rep.Warnings() {
		yellow.Printf("warning: %s\n", w)
	}
}
