package cli

import (
	"fmt"
	"os"

	"github.com/annohub/anno/internal/config"
	"github.com/annohub/anno/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an anno workspace",
	Long: `Initialize an anno workspace in the current directory.
This creates a .anno directory holding the configuration and the local
cache of class catalogs and upload records.`,
	Run: runInit,
}

var (
	initURL  string
	initTeam int
)

func init() {
	initCmd.Flags().StringVar(&initURL, "url", "https://api.annohub.io", "Platform API URL")
	initCmd.Flags().IntVar(&initTeam, "team", 0, "Team ID")
	initCmd.MarkFlagRequired("team")
}

func runInit(cmd *cobra.Command, args []string) {
	cwd, err := os.Getwd()
	if err != nil {
		exitError("%v", err)
	}

	if _, err := config.FindAnnoRoot(cwd); err == nil {
		exitError("anno workspace already exists")
	}

	cfg, err := config.Initialize(cwd, initURL, initTeam)
	if err != nil {
		exitError("failed to initialize config: %v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to create store: %v", err)
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		exitError("failed to initialize store: %v", err)
	}

	fmt.Printf("Initialized anno workspace in %s/\n", config.AnnoDir)
	fmt.Printf("API: %s (team %d)\n", initURL, initTeam)
	fmt.Printf("\nRun 'anno auth set-token' to store your API token.\n")
}
