package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/logging"
)

const (
	configFlag  = "config"
	timeoutFlag = "timeout"
)

var exitCode int

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ProcessName + " COMMAND [args]",
		Short: "Extract files into data sources",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Initialize(constants.ProcessName)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				exitCode = 1
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(configFlag, "extractors.hcl", "Path of the extractor config file (.hcl, .yaml or .yml)")
	_ = viper.BindPFlag(configFlag, rootCmd.PersistentFlags().Lookup(configFlag))

	// every flag may also be set with a TAILPIPE_EXTRACTOR_ env var, e.g. TAILPIPE_EXTRACTOR_CONFIG
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		runCmd(),
		statusCmd(),
	)

	return rootCmd
}

func Execute() int {
	rootCmd := rootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}
	return exitCode
}
