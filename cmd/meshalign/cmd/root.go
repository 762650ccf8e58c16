// Package cmd implements the meshalign command line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/logging"
)

var (
	configFile  string
	globalFlags *globals.Flags

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "meshalign",
	Short: "Ensemble fusion for ontology alignment mappings",
	Long: `Meshalign integrates correspondence sets produced independently by
several ontology matching engines into a single consensus alignment.

It fuses per-matcher SSSOM mapping files, applies configurable voting
strategies, resolves subjects mapped to multiple objects, and reports
quality statistics and inter-matcher agreement.`,
	PersistentPreRunE: setupCommand,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) error {
	Version = version
	Commit = commit
	Date = date

	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default is $HOME/.meshalign.yaml)")
	globalFlags = globals.AddFlags(rootCmd)
}

// setupCommand loads environment, configuration, and logging before
// any subcommand runs.
func setupCommand(cmd *cobra.Command, _ []string) error {
	// Load .env if present; ignore absence.
	_ = godotenv.Load()

	if err := initConfig(); err != nil {
		return err
	}

	configureLogging(cmd)
	return nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".meshalign")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MESHALIGN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		logging.Debug().Str("config", viper.ConfigFileUsed()).Msg("Loaded configuration")
	}

	return nil
}

// configureLogging adjusts the global logger from command flags and
// bound configuration. Config-file keys and MESHALIGN_QUIET/
// MESHALIGN_VERBOSE env vars apply when the flags are unset.
func configureLogging(cmd *cobra.Command) {
	flags, err := globals.Parse(cmd)
	if err != nil {
		flags = globalFlags
	}

	switch {
	case flags.Quiet || viper.GetBool("quiet"):
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case flags.Verbose || viper.GetBool("verbose"):
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flags.NoColor || viper.GetBool("no-color") {
		logging.SetDefault(logging.NewJSON(os.Stderr))
	}
}
