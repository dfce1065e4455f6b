package cli

import (
	"context"
	"fmt"

	"github.com/annohub/anno/internal/core"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	downloadProject int
	downloadFolder  int
	downloadDir     string
	downloadWorkers int
)

var downloadCmd = &cobra.Command{
	Use:   "download [<name>...]",
	Short: "Download annotations of folder items",
	Long: `Download the annotations of the named items, or of every item in the
folder if no names are given. Each annotation is written to <name>.json.

Examples:
  anno download                       Download the whole root folder
  anno download a.jpg b.jpg -d out    Download two items into ./out`,
	Run: runDownload,
}

func init() {
	downloadCmd.Flags().IntVarP(&downloadProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
	downloadCmd.Flags().IntVar(&downloadFolder, "folder", 0, "Folder ID (defaults to the root folder)")
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "d", ".", "Output directory")
	downloadCmd.Flags().IntVarP(&downloadWorkers, "workers", "w", 0, "Parallel downloads (defaults to config)")
}

func runDownload(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	workers := downloadWorkers
	if workers <= 0 {
		workers = c.Config.Workers
	}

	result, err := core.DownloadAnnotations(context.Background(), c.Client, core.DownloadOptions{
		ProjectID: c.projectID(downloadProject),
		FolderID:  downloadFolder,
		Names:     args,
		Dir:       downloadDir,
		Workers:   workers,
	}, progressPrinter)
	fmt.Println() // newline after progress
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Downloaded %d annotation(s) to %s\n", len(result.Downloaded), downloadDir)

	if len(result.Missing) > 0 {
		yellow := color.New(color.FgYellow)
		yellow.Printf("%d item(s) not found:\n", len(result.Missing))
		for _, name := range result.Missing {
			fmt.Printf("  %s\n", name)
		}
	}
}
