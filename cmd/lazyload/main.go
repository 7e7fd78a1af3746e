package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/lazyload/internal/config"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:          "lazyload",
	Short:        "Browse large contact collections page by page",
	SilenceUsage: true,
	RunE:         runBrowse,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("lazyload %s\n", Version)
		fmt.Println("Lazy contact browser")
		fmt.Println("github.com/pders01/lazyload")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/lazyload/config.toml",
	Run: func(_ *cobra.Command, _ []string) {
		configFile := defaultConfigFile()
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func defaultConfigFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lazyload", "config.toml")
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	pf.BoolVar(&quiet, "quiet", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, browseCmd, serveCmd, seedCmd, exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
