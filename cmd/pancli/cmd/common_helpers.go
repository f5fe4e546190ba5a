package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/zf1976/pancli/pkg/logging"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var isTerminal = true
var noColorRequested = false

const (
	PancliInteractive        = "PANCLI_INTERACTIVE"
	PancliInteractiveDisable = "no"
	DeathMessage             = "Error executing command: {{.Error|red}}\n"
	WarnMessage              = "{{.Warning|yellow}}\n"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var ErrUnknownOutput = errors.New("unknown output format")

//nolint:gochecknoinits
func init() {
	// disable colors if we're not attached to interactive TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv(PancliInteractive) == PancliInteractiveDisable {
		DisableColors()
	}
}

func DisableColors() {
	text.DisableColors()
	isTerminal = false
}

func WriteTo(tpl string, data interface{}, w io.Writer) {
	templ := template.New("output")
	templ.Funcs(template.FuncMap{
		"red": func(arg interface{}) string {
			return text.FgHiRed.Sprint(arg)
		},
		"yellow": func(arg interface{}) string {
			return text.FgHiYellow.Sprint(arg)
		},
		"green": func(arg interface{}) string {
			return text.FgHiGreen.Sprint(arg)
		},
		"blue": func(arg interface{}) string {
			return text.FgHiBlue.Sprint(arg)
		},
		"bold": func(arg interface{}) string {
			return text.Bold.Sprint(arg)
		},
		"underline": func(arg interface{}) string {
			return text.Underline.Sprint(arg)
		},
		"ljust": func(length int, s string) string {
			return text.AlignLeft.Apply(s, length)
		},
		"lower": strings.ToLower,
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return t.Local().Format(time.DateTime)
		},
	})
	t := template.Must(templ.Parse(tpl))
	err := t.Execute(w, data)
	if err != nil {
		panic(err)
	}
}

func Write(tpl string, data interface{}) {
	WriteTo(tpl, data, os.Stdout)
}

// WriteFormatted renders v as JSON or YAML, or through tpl for text output.
func WriteFormatted(w io.Writer, format, tpl string, v interface{}) error {
	switch format {
	case OutputText, "":
		WriteTo(tpl, v, w)
		return nil
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutput, format)
	}
}

func Warning(message string) {
	WriteTo(WarnMessage, struct{ Warning string }{Warning: "Warning: " + message}, os.Stderr)
}

// Die prints err and exits.  Deferred calls do not run, so log outputs are closed here.
func Die(err string, code int) {
	WriteTo(DeathMessage, struct{ Error string }{err}, os.Stderr)
	_ = logging.CloseWriters()
	os.Exit(code)
}

func DieFmt(msg string, args ...interface{}) {
	Die(fmt.Sprintf(msg, args...), 1)
}

func DieErr(err error) {
	Die(err.Error(), 1)
}

func Fmt(msg string, args ...interface{}) {
	fmt.Printf(msg, args...)
}
