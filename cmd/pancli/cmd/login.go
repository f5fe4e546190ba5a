package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zf1976/pancli/pkg/config"
	"github.com/zf1976/pancli/pkg/qrlogin"
)

const (
	scanCodeTemplate = `Scan the QR code with the {{"mobile app" | bold}} and confirm the login.
`
	codeContentTemplate = `If the code does not render, encode this text as a QR code:
{{.CodeContent | blue | underline}}
`
	loggedInTemplate = `
[{{.Time | green}}] {{"Logged in." | green | bold}}
`
	tokenTemplate = `{{"User:" | ljust 14}}{{.NickName | bold}} ({{.UserID}})
{{"Drive:" | ljust 14}}{{.DefaultDriveID}}
{{"Token type:" | ljust 14}}{{.TokenType}}
{{"Access token:" | ljust 14}}{{.AccessToken}}
{{"Refresh:" | ljust 14}}{{.RefreshToken}}
{{"Expires:" | ljust 14}}{{.OAuth2.Expiry | datetime}}
{{with .Subject}}{{"Subject:" | ljust 14}}{{.}}
{{end}}`
)

// renderCode prints the login code for the user to scan.
func renderCode(w io.Writer, handle *qrlogin.QRCodeHandle) {
	WriteTo(scanCodeTemplate, handle, w)
	if isTerminal {
		qrterminal.GenerateHalfBlock(handle.CodeContent, qrterminal.L, w)
	}
	WriteTo(codeContentTemplate, handle, w)
}

// loginFailure turns a failed login into a message for the user.
func loginFailure(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, qrlogin.ErrExpired):
		return "the QR code expired before it was confirmed, run \"pancli login\" again"
	case errors.Is(err, qrlogin.ErrCancelled):
		return "the login was cancelled on the mobile app"
	case errors.Is(err, qrlogin.ErrTimeout):
		return fmt.Sprintf("gave up waiting for the QR code to be confirmed after %s", timeout)
	default:
		return err.Error()
	}
}

func runLogin(cmd *cobra.Command, output string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stopMetrics := serveMetrics(ctx, cfg.Metrics.ListenAddress)
	defer stopMetrics()

	opts := append(qrlogin.OptionsFromConfig(cfg),
		qrlogin.WithCodeHandler(func(_ context.Context, handle *qrlogin.QRCodeHandle) error {
			renderCode(os.Stdout, handle)
			return nil
		}))
	client, err := qrlogin.NewAuthClient(ctx, opts...)
	if err != nil {
		return err
	}

	token, err := client.LoginViaQR(ctx, cfg.Poll.Interval, cfg.Poll.Timeout)
	if err != nil {
		return errors.New(loginFailure(err, cfg.Poll.Timeout))
	}

	if output == OutputText || output == "" {
		Write(loggedInTemplate, struct{ Time string }{Time: time.Now().Format(time.DateTime)})
	}
	return WriteFormatted(os.Stdout, output, tokenTemplate, token)
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Log in by scanning a QR code with the mobile app",
	Long:    "Show a QR code, wait for it to be scanned and confirmed on the mobile app, then print the resulting access token.",
	Example: "pancli login --timeout 2m --output json",
	Run: func(cmd *cobra.Command, _ []string) {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			DieErr(err)
		}
		// runLogin returns before dying so its deferred shutdown runs
		if err := runLogin(cmd, output); err != nil {
			DieErr(err)
		}
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(loginCmd)
	flags := loginCmd.Flags()
	flags.Duration("interval", config.DefaultPollInterval, "time between scan status queries")
	flags.Duration("timeout", config.DefaultPollTimeout, "how long to wait for the QR code to be confirmed")
	flags.Int("max-transient-errors", config.DefaultPollMaxTransientErrors, "give up after this many failed status queries (0: only the timeout applies)")
	flags.StringP("output", "o", OutputText, "output format: text, json or yaml")

	must(viper.BindPFlag(config.PollIntervalKey, flags.Lookup("interval")))
	must(viper.BindPFlag(config.PollTimeoutKey, flags.Lookup("timeout")))
	must(viper.BindPFlag(config.PollMaxTransientErrorsKey, flags.Lookup("max-transient-errors")))
}
