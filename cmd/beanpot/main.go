// Package main provides the beanpot binary entry point: manifest
// validation and dependency graph inspection for container manifests.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "beanpot"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Singleton bean container tooling",
		Long: `Beanpot inspects and validates container manifests for the
beanpot singleton registry.

A manifest declares named beans, the factory that builds each, and the
startup ordering edges between them. The tool checks structural rules
and reports the creation order a container would use.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(validateCmd())
	cmd.AddCommand(graphCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func validateCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a container manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := validateManifest(manifestPath)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "beanpot.yaml", "Manifest file path")
	return cmd
}

func graphCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the startup dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := renderGraph(manifestPath)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "beanpot.yaml", "Manifest file path")
	return cmd
}
