package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/zf1976/pancli/pkg/version"
)

const versionTemplate = `pancli version: {{.Version | bold}}{{if not .Released}} (unreleased build){{end}}
go version: {{.GoVersion}}
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pancli version",
	Run: func(cmd *cobra.Command, _ []string) {
		Write(versionTemplate, struct {
			Version   string
			Released  bool
			GoVersion string
		}{
			Version:   version.Version,
			Released:  version.IsReleased(),
			GoVersion: runtime.Version(),
		})
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(versionCmd)
}
