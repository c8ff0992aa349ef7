// Package main provides the codebook binary entry point. Codebook is a
// parsing and normalization toolkit for biennial survey codebook
// documents: it segments and parses the core, exit, and post-exit
// document families, builds the cross-year variable catalog, and buckets
// variables for browsing.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "codebook"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	app := &appContext{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Survey codebook parsing and normalization toolkit",
		Long: `Codebook parses biennial survey codebook documents into normalized
JSON records.

It provides:
- Segmentation and parsing of core, exit, and post-exit codebooks
- The variable-naming codec (wave letters, base names, years)
- A cross-year catalog of variable base names
- Bucketed categorization for browsing

Documents are read from a local data directory; records go to stdout
or an output directory as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&app.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&app.dataDir, "data-dir", "", "Data directory holding codebook files")
	pf.StringVar(&app.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		parseCmd(app),
		catalogCmd(app),
		categorizeCmd(app),
		nameCmd(app),
		discoverCmd(app),
		watchCmd(app),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
