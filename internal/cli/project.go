package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/remote"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Manage the team's annotation projects.

Examples:
  anno project list                         List all projects
  anno project create cars --type Vector    Create a project
  anno project use 42                       Make project 42 the default
  anno project delete 42                    Delete project 42`,
}

var (
	projectListName    string
	projectCreateType  string
	projectCreateDesc  string
	projectDeleteForce bool
)

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	Run:   runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectCreate,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectDelete,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Set the default project of the workspace",
	Args:  cobra.ExactArgs(1),
	Run:   runProjectUse,
}

func init() {
	projectListCmd.Flags().StringVar(&projectListName, "name", "", "Only list projects with this exact name")
	projectCreateCmd.Flags().StringVar(&projectCreateType, "type", models.ProjectTypeVector, "Project type (Vector, Pixel, Video)")
	projectCreateCmd.Flags().StringVar(&projectCreateDesc, "description", "", "Project description")
	projectDeleteCmd.Flags().BoolVarP(&projectDeleteForce, "force", "f", false, "Delete without confirmation")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectUseCmd)
}

func parseID(arg, what string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		exitError("invalid %s ID '%s'", what, arg)
	}
	return id
}

func runProjectList(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	projects, err := c.Client.ListProjects(context.Background(), projectListName)
	if err != nil {
		exitError("%v", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects.")
		return
	}

	cyan := color.New(color.FgCyan)
	for _, p := range projects {
		marker := " "
		if p.ID == c.Config.DefaultProject {
			marker = "*"
		}
		fmt.Printf("%s ", marker)
		cyan.Printf("%6d", p.ID)
		fmt.Printf("  %-8s %s\n", p.Type, p.Name)
	}
}

func runProjectCreate(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	switch projectCreateType {
	case models.ProjectTypeVector, models.ProjectTypePixel, models.ProjectTypeVideo:
	default:
		exitError("invalid project type '%s'", projectCreateType)
	}

	p, err := c.Client.CreateProject(context.Background(), &remote.CreateProjectRequest{
		Name:        args[0],
		Description: projectCreateDesc,
		Type:        projectCreateType,
	})
	if err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Created project '%s' (%d)\n", p.Name, p.ID)
}

func runProjectDelete(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	id := parseID(args[0], "project")
	ctx := context.Background()

	p, err := c.Client.GetProject(ctx, id)
	if err != nil {
		exitError("%v", err)
	}

	if !projectDeleteForce && !confirm(fmt.Sprintf("Delete project '%s' (%d)?", p.Name, p.ID)) {
		fmt.Println("Aborted.")
		return
	}

	if err := c.Client.DeleteProject(ctx, id); err != nil {
		exitError("%v", err)
	}
	if err := c.Store.DeleteCatalog(id); err != nil {
		exitError("%v", err)
	}
	if c.Config.DefaultProject == id {
		c.Config.DefaultProject = 0
		if err := c.Config.Save(); err != nil {
			exitError("%v", err)
		}
	}

	fmt.Printf("Deleted project '%s'\n", p.Name)
}

func runProjectUse(cmd *cobra.Command, args []string) {
	c := initClientContext()
	defer c.Close()

	id := parseID(args[0], "project")
	p, err := c.Client.GetProject(context.Background(), id)
	if err != nil {
		exitError("%v", err)
	}

	c.Config.DefaultProject = p.ID
	if err := c.Config.Save(); err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Default project is now '%s' (%d)\n", p.Name, p.ID)
}
