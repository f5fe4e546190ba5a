package cmd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zf1976/pancli/pkg/config"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the local pancli configuration",
}

const elidedValue = "[elided]"

// secretKeys are not printed by config show.
var secretKeys = []string{config.LoginDeviceIDKey}

// elideSecrets returns settings, as nested by viper.AllSettings, with secret values replaced.
func elideSecrets(settings map[string]any) map[string]any {
	for _, key := range secretKeys {
		m := settings
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			next, ok := m[part].(map[string]any)
			if !ok {
				m = nil
				break
			}
			m = next
		}
		last := parts[len(parts)-1]
		if v, ok := m[last]; ok && v != "" {
			m[last] = elidedValue
		}
	}
	return settings
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		if used := viper.ConfigFileUsed(); used != "" {
			Fmt("# %s\n", used)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(elideSecrets(viper.AllSettings())); err != nil {
			DieErr(err)
		}
		if err := enc.Close(); err != nil {
			DieErr(err)
		}
	},
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return config.ErrBadDuration
	}
	return nil
}

func validateListenAddress(s string) error {
	if s == "" {
		return nil
	}
	_, _, err := net.SplitHostPort(s)
	return err
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create/update local pancli configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		if viper.ConfigFileUsed() == "" {
			// Setup default config file
			home, err := homedir.Dir()
			if err != nil {
				DieErr(err)
			}
			viper.SetConfigFile(filepath.Join(home, ".pancli.yaml"))
		}
		fmt.Printf("Config file %s will be used\n", viper.ConfigFileUsed())

		questions := []struct {
			Key    string
			Prompt *promptui.Prompt
		}{
			{Key: config.LoginDeviceIDKey, Prompt: &promptui.Prompt{Label: "Device ID"}},
			{Key: config.PollIntervalKey, Prompt: &promptui.Prompt{Label: "Poll interval", Validate: validateDuration}},
			{Key: config.PollTimeoutKey, Prompt: &promptui.Prompt{Label: "Poll timeout", Validate: validateDuration}},
			{Key: config.MetricsListenAddressKey, Prompt: &promptui.Prompt{Label: "Metrics listen address (empty to disable)", Validate: validateListenAddress}},
		}
		for _, question := range questions {
			question.Prompt.Default = viper.GetString(question.Key)
			val, err := question.Prompt.Run()
			if err != nil {
				DieErr(err)
			}
			viper.Set(question.Key, val)
		}

		err := viper.SafeWriteConfig()
		if err != nil {
			err = viper.WriteConfig()
		}
		if err != nil {
			DieErr(err)
		}
	},
}

//nolint:gochecknoinits
func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
