package cmd

import (
	"errors"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zf1976/pancli/pkg/config"
	"github.com/zf1976/pancli/pkg/logging"
	"github.com/zf1976/pancli/pkg/version"
)

var (
	cfgFile string
	cfg     *config.Config
	// cfgErr is the result of reading the configuration file
	cfgErr error
)

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:   "pancli",
	Short: "A cli tool to log into the cloud drive",
	Long:  `pancli logs into the cloud drive by scanning a QR code with the mobile app`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorRequested {
			DisableColors()
		}

		if errors.As(cfgErr, &viper.ConfigFileNotFoundError{}) {
			if cfgFile != "" {
				// specific message in case the file isn't found
				DieFmt("config file not found, please run \"pancli config init\" to create one\n%s\n", cfgErr)
			}
			// if the config file wasn't provided, try to run using the default values + env vars
		} else if cfgErr != nil && cmd != configInitCmd {
			// other errors while reading the config file
			DieFmt("error reading configuration file: %v", cfgErr)
		}

		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			DieFmt("error unmarshal configuration: %v", err)
		}
		if err := cfg.SetupLogger(); err != nil {
			DieFmt("error setting up logging: %v", err)
		}
		if cfgErr == nil {
			logging.ContextUnavailable().
				WithField("file", viper.ConfigFileUsed()).
				Debug("loaded configuration from file")
		}
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logging.CloseWriters()
	},
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		DieErr(err)
	}
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.pancli.yaml)")
	flags.BoolVar(&noColorRequested, "no-color", false, "don't use fancy output colors (default when not attached to an interactive terminal)")
	flags.String("log-level", config.DefaultLoggingLevel, "set logging level")
	flags.String("log-format", config.DefaultLoggingFormat, "set logging output format")
	flags.StringSlice("log-output", []string{config.DefaultLoggingOutput}, "set logging output(s)")

	must(viper.BindPFlag(config.LoggingLevelKey, flags.Lookup("log-level")))
	must(viper.BindPFlag(config.LoggingFormatKey, flags.Lookup("log-format")))
	must(viper.BindPFlag(config.LoggingOutputKey, flags.Lookup("log-output")))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			DieErr(err)
		}

		// Search config in home directory with name ".pancli" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pancli")
	}

	viper.SetEnvPrefix("PANCLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()                                   // read in environment variables that match

	cfgErr = viper.ReadInConfig()
}
