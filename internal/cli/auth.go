package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/annohub/anno/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials",
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the API token",
	Long: `Store the API token in the workspace database.
The token is read from stdin (not passed as an argument). The ANNO_TOKEN
environment variable takes precedence over the stored token.

Examples:
  anno auth set-token                    # prompts for token
  echo "my-token" | anno auth set-token  # pipe token from stdin`,
	Args: cobra.NoArgs,
	Run:  runAuthSetToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API token comes from",
	Args:  cobra.NoArgs,
	Run:   runAuthStatus,
}

func init() {
	authCmd.AddCommand(authSetTokenCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthSetToken(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	fmt.Fprint(os.Stderr, "Enter API token: ")

	reader := bufio.NewReader(os.Stdin)
	token, err := reader.ReadString('\n')
	if err != nil && token == "" {
		exitError("failed to read token: %v", err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		exitError("token cannot be empty")
	}

	if err := c.Store.SetToken(token); err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Println("Token stored")
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	fmt.Printf("API:  %s\n", c.Config.APIURL)
	fmt.Printf("Team: %d\n", c.Config.TeamID)

	if os.Getenv(config.EnvToken) != "" {
		fmt.Printf("Token: from %s\n", config.EnvToken)
		return
	}
	token, err := c.Store.GetToken()
	if err != nil {
		exitError("get token: %v", err)
	}
	if token == "" {
		color.New(color.FgYellow).Println("Token: not configured")
		return
	}
	fmt.Println("Token: stored in workspace")
}
