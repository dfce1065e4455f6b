package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var folderProject int

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage project folders",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the folders of a project",
	Args:  cobra.NoArgs,
	Run:   runFolderList,
}

var folderCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	Run:   runFolderCreate,
}

func init() {
	folderCmd.PersistentFlags().IntVarP(&folderProject, "project", "p", 0, "Project ID (defaults to the workspace project)")

	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderCreateCmd)
}

func runFolderList(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	folders, err := c.Client.ListFolders(context.Background(), c.projectID(folderProject))
	if err != nil {
		exitError("%v", err)
	}

	cyan := color.New(color.FgCyan)
	for _, f := range folders {
		name := f.Name
		if name == "" {
			name = "(root)"
		}
		cyan.Printf("%6d", f.ID)
		fmt.Printf("  %s\n", name)
	}
}

func runFolderCreate(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	f, err := c.Client.CreateFolder(context.Background(), c.projectID(folderProject), args[0])
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Created folder '%s' (%d)\n", f.Name, f.ID)
}
