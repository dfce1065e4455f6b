package cli

import (
	"context"
	"fmt"

	"github.com/annohub/anno/internal/core"
	"github.com/annohub/anno/internal/report"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsProject int

var statsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Show class and attribute usage of annotation files",
	Long: `Resolve every annotation file in a directory and print how often each
class and attribute is used.

Examples:
  anno stats ./annotations`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
}

func runStats(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	paths, err := core.AnnotationFiles(args[0])
	if err != nil {
		exitError("%v", err)
	}

	rep := report.New(logger)
	catalog, err := core.LoadCatalog(c.Store, c.projectID(statsProject), rep)
	if err != nil {
		exitError("%v", err)
	}
	templates, err := core.LoadTemplates(c.Store)
	if err != nil {
		exitError("%v", err)
	}

	stats, err := core.CollectStats(context.Background(), paths, catalog, templates, rep)
	if err != nil {
		exitError("%v", err)
	}

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Printf("%d annotated item(s)\n\n", stats.Images)
	for _, cls := range stats.Classes {
		name := cls.ClassName
		if name == "" {
			name = "(no class)"
		}
		cyan.Printf("%6d", cls.Instances)
		fmt.Printf("  %s\n", name)
		for _, a := range stats.Attributes[cls.ClassName] {
			fmt.Printf("        %5d  %s: %s\n", a.Count, a.Group, a.Attribute)
		}
	}

	printFailed(stats.Failed)
	printReport(rep)
}
