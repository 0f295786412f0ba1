// Package main is the stepwright CLI: a compile subcommand that parses and
// legalizes an EXPRESS schema file, a load subcommand that parses a Part 21
// exchange file against the built-in ap000 schema, and a generate
// subcommand that emits Go bindings for an EXPRESS schema file.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "STEPWRIGHT"

var rootCmd = &cobra.Command{
	Use:   "stepwright",
	Short: "EXPRESS schema compiler and Part 21 exchange-file loader",
	Long: `stepwright parses and legalizes ISO 10303-11 (EXPRESS) schemas and loads
ISO 10303-21 (Part 21) exchange files against generated or hand-written
schema bindings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func main() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newGenerateCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("stepwright exited with error", "error", err)
		os.Exit(1) //revive:disable-line:deep-exit
	}
}
