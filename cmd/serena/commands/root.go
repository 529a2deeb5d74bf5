// Package commands provides the CLI commands for serena.
package commands

import (
	"github.com/spf13/cobra"

	"serena/internal/mcp"
)

var rootCmd = &cobra.Command{
	Use:   "serena",
	Short: "Serena - coding agent MCP server",
	Long: `Serena serves coding agent tools over the Model Context Protocol.

Run 'serena serve' to start the server. Projects are activated on demand
through the activate_project tool; a project directory is bootstrapped
with a .serena/project.yml record the first time it is activated.`,
	Version: mcp.Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
