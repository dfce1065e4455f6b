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
	uploadProject int
	uploadFolder  int
	uploadForce   bool
	uploadWorkers int
)

var uploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Resolve and upload annotation files",
	Long: `Resolve every annotation file in a directory against the cached class
catalog and upload it to the matching item of a project folder.

Files are matched to items by name: a.jpg___objects.json, a.jpg___pixel.json
and a.jpg.json all belong to item a.jpg. Files unchanged since their last
upload are skipped unless --force is given.

Examples:
  anno upload ./annotations
  anno upload ./annotations --folder 12 --workers 8
  anno upload ./annotations --force`,
	Args: cobra.ExactArgs(1),
	Run:  runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&uploadProject, "project", "p", 0, "Project ID (defaults to the workspace project)")
	uploadCmd.Flags().IntVar(&uploadFolder, "folder", 0, "Folder ID (defaults to the root folder)")
	uploadCmd.Flags().BoolVarP(&uploadForce, "force", "f", false, "Upload files even if unchanged")
	uploadCmd.Flags().IntVarP(&uploadWorkers, "workers", "w", 0, "Parallel uploads (defaults to config)")
}

func runUpload(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	paths, err := core.AnnotationFiles(args[0])
	if err != nil {
		exitError("%v", err)
	}
	if len(paths) == 0 {
		fmt.Println("No annotation files found.")
		return
	}

	workers := uploadWorkers
	if workers <= 0 {
		workers = c.Config.Workers
	}

	projectID := c.projectID(uploadProject)
	rep := report.New(logger)

	fmt.Printf("Uploading %d file(s) to project %d...\n", len(paths), projectID)
	result, err := core.UploadAnnotations(context.Background(), c.Store, c.Client, core.UploadOptions{
		ProjectID: projectID,
		FolderID:  uploadFolder,
		Paths:     paths,
		Force:     uploadForce,
		Workers:   workers,
		Report:    rep,
	}, progressPrinter)
	fmt.Println() // newline after progress
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Printf("Uploaded %d annotation(s)\n", len(result.Uploaded))
	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d unchanged annotation(s)\n", len(result.Skipped))
	}
	if len(result.Missing) > 0 {
		yellow.Printf("%d item(s) not found in folder:\n", len(result.Missing))
		for _, name := range result.Missing {
			fmt.Printf("  %s\n", name)
		}
	}
	printFailed(result.Failed)
	printReport(rep)
}
