package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krsjen/github-project-mcp/internal/mcpserver"
)

// Version information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "github-project-mcp",
	Short:   "MCP server for GitHub projects, issues, milestones, and sprints",
	Long:    "A Model Context Protocol server that manages GitHub project boards, issues, milestones, and iteration-based sprints for a single repository.",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdin/stdout",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := newLogger(viper.GetBool("verbose"))
		slog.SetDefault(logger)

		cfg := mcpserver.Config{
			Version:                version,
			Token:                  viper.GetString("token"),
			Owner:                  viper.GetString("owner"),
			Repo:                   viper.GetString("repo"),
			APIBaseURL:             viper.GetString("api-url"),
			GraphQLURL:             viper.GetString("graphql-url"),
			ExportTranslationsPath: viper.GetString("export-translations"),
			Logger:                 logger,
		}
		return mcpserver.RunStdio(cfg)
	},
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	// stdout carries the MCP wire protocol; logs go to stderr.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	// A .env beside the binary is a convenience for local runs; a missing
	// file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	rootCmd.PersistentFlags().String("token", "", "GitHub personal access token")
	rootCmd.PersistentFlags().String("owner", "", "Repository owner login")
	rootCmd.PersistentFlags().String("repo", "", "Repository name")
	rootCmd.PersistentFlags().String("api-url", "", "GitHub REST API base URL (Enterprise)")
	rootCmd.PersistentFlags().String("graphql-url", "", "GitHub GraphQL endpoint (Enterprise)")
	rootCmd.PersistentFlags().String("export-translations", "", "Write overridable description keys to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	viper.SetEnvPrefix("github")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(stdioCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
