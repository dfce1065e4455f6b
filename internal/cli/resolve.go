package cli

import (
	"encoding/json"

	"github.com/annohub/anno/internal/core"
	"github.com/annohub/anno/internal/report"
	"github.com/spf13/cobra"
)

var (
	resolveProject int
	resolveOutput  string
	resolveIndent  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Fill catalog IDs into an annotation file",
	Long: `Resolve the class, template and attribute names of an annotation file
against the cached class catalog and print the document with classId,
templateId, groupId and id filled in.

Unknown names are reported on stderr; they never fail the command.

Examples:
  anno resolve a.jpg___objects.json
  anno resolve a.jpg___objects.json -o resolved.json --indent`,
	Args: cobra.ExactArgs(1),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().IntVarP(&resolveProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Write the result to a file instead of stdout")
	resolveCmd.Flags().BoolVar(&resolveIndent, "indent", false, "Indent the JSON output")
}

func runResolve(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	rep := report.New(logger)
	catalog, err := core.LoadCatalog(c.Store, c.projectID(resolveProject), rep)
	if err != nil {
		exitError("%v", err)
	}
	templates, err := core.LoadTemplates(c.Store)
	if err != nil {
		exitError("%v", err)
	}

	doc, err := core.ResolveFile(args[0], catalog, templates, rep)
	if err != nil {
		exitError("%v", err)
	}

	var data []byte
	if resolveIndent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		exitError("encode: %v", err)
	}

	writeOutput(resolveOutput, data)
	printReport(rep)
}
