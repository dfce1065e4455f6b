package cli

import (
	"github.com/annohub/anno/internal/core"
	"github.com/annohub/anno/internal/report"
	"github.com/spf13/cobra"
)

var (
	videoProject int
	videoOutput  string
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Work with video annotations",
}

var videoConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a video annotation export to the editor timeline format",
	Long: `Convert a per-parameter video annotation export into the editor format,
where every instance carries a sparse timeline keyed by seconds. Class and
attribute names are resolved against the cached class catalog.

Examples:
  anno video convert clip.mp4.json
  anno video convert clip.mp4.json -o editor.json`,
	Args: cobra.ExactArgs(1),
	Run:  runVideoConvert,
}

func init() {
	videoCmd.PersistentFlags().IntVarP(&videoProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
	videoConvertCmd.Flags().StringVarP(&videoOutput, "output", "o", "", "Write the result to a file instead of stdout")

	videoCmd.AddCommand(videoConvertCmd)
}

func runVideoConvert(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	rep := report.New(logger)
	catalog, err := core.LoadCatalog(c.Store, c.projectID(videoProject), rep)
	if err != nil {
		exitError("%v", err)
	}

	data, err := core.ConvertVideoFile(args[0], catalog, rep)
	if err != nil {
		exitError("%v", err)
	}

	writeOutput(videoOutput, data)
	printReport(rep)
}
