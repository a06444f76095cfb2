// Command admin is the operator console for the fitreport API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fitreport/internal/client"
)

// app carries what every command needs.
type app struct {
	v   *viper.Viper
	log *slog.Logger
	out io.Writer
	// prompter asks the operator; tests replace it.
	prompter prompter
}

func newApp(out, errOut io.Writer) *app {
	v := viper.New()
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("timeout", 30*time.Second)
	v.SetEnvPrefix("FITREPORT")
	v.AutomaticEnv()

	handler := charmlog.NewWithOptions(errOut, charmlog.Options{
		Prefix:          "fitreport",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           charmlog.InfoLevel,
	})
	return &app{
		v:        v,
		log:      slog.New(handler),
		out:      out,
		prompter: huhPrompter{},
	}
}

func (a *app) sessionPath() string {
	if p := a.v.GetString("session_file"); p != "" {
		return p
	}
	return defaultSessionPath()
}

func (a *app) assumeYes() bool {
	return a.v.GetBool("yes")
}

func (a *app) newClient(token string) *client.Client {
	return client.New(client.Config{
		BaseURL: a.v.GetString("api_url"),
		APIKey:  a.v.GetString("api_key"),
		Token:   token,
		Timeout: a.v.GetDuration("timeout"),
	})
}

// authedClient requires a saved session.
func (a *app) authedClient() (*client.Client, *session, error) {
	s, err := loadSession(a.sessionPath())
	if err != nil {
		return nil, nil, err
	}
	return a.newClient(s.Token), s, nil
}

// confirm asks unless --yes was given.
func (a *app) confirm(question string) error {
	if a.assumeYes() {
		return nil
	}
	ok, err := a.prompter.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	return nil
}

var errCancelled = errors.New("취소되었습니다")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "2FitReport operator console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "API base URL (FITREPORT_API_URL)")
	flags.String("api-key", "", "apikey header value (FITREPORT_API_KEY)")
	flags.String("session-file", "", "session file path (FITREPORT_SESSION_FILE)")
	flags.BoolP("yes", "y", false, "skip confirmation prompts")
	flags.Bool("debug", false, "debug logging")
	for key, flag := range map[string]string{
		"api_url":      "api-url",
		"api_key":      "api-key",
		"session_file": "session-file",
		"yes":          "yes",
		"debug":        "debug",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.PersistentPreRun = func(*cobra.Command, []string) {
		if a.v.GetBool("debug") {
			if h, ok := a.log.Handler().(*charmlog.Logger); ok {
				h.SetLevel(charmlog.DebugLevel)
			}
		}
	}

	root.AddCommand(
		newSeedCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newUsersCmd(a),
		newDocsCmd(a),
	)
	return root
}

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "오류:", describeError(err))
		os.Exit(1)
	}
}
