package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/client"
	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// globals holds the flags shared by every command. Each flag can also be set
// through a FEEDBACKCTL_* environment variable.
type globals struct {
	v *viper.Viper
}

func (g *globals) client() *client.Client {
	return client.New(
		g.v.GetString("api-url"),
		client.NewFileTokenStore(g.v.GetString("token-file")),
		client.WithTimeout(g.v.GetDuration("timeout")),
	)
}

func newRootCmd() *cobra.Command {
	g := &globals{v: viper.New()}

	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "Command line client for the feedback API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080/api", "Base URL of the API, including /api")
	root.PersistentFlags().String("token-file", defaultTokenFile(), "Where the admin token is kept")
	root.PersistentFlags().Duration("timeout", client.DefaultTimeout, "Per-request timeout")

	g.v.SetEnvPrefix("FEEDBACKCTL")
	g.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	g.v.AutomaticEnv()
	_ = g.v.BindPFlags(root.PersistentFlags())

	root.AddCommand(
		newLoginCmd(g),
		newLogoutCmd(g),
		newValidateCmd(g),
		newSubmitCmd(g),
		newLookupCmd(g),
		newSuggestCmd(g),
		newRangeCmd(g),
		newStatsCmd(g),
		newExportCmd(g),
		newListsCmd(g),
		newSettingsCmd(g),
		newPasswordCmd(g),
	)
	return root
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".feedbackctl-token.json"
	}
	return filepath.Join(dir, "feedbackctl", "token.json")
}

// readYAMLFile decodes a YAML file into out through its JSON form, so the
// JSON field names and lenient decoders of the API types apply.
func readYAMLFile(path string, out interface{}) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	jsonData, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe turns client errors into something a person can act on.
func describe(err error) string {
	var verrs feedback.ValidationErrors
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthenticated):
		return "not logged in; run `feedbackctl login` first"
	case errors.Is(err, client.ErrAccessDenied):
		return "access denied; this account is not an administrator"
	case errors.As(err, &verrs):
		var b strings.Builder
		b.WriteString(feedback.SubmitFailedMessage)
		for _, key := range verrs.Keys() {
			fmt.Fprintf(&b, "\n  %s: %s", key, verrs[key])
		}
		return b.String()
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		var b strings.Builder
		b.WriteString(apiErr.Error())
		for field, msg := range apiErr.Fields {
			fmt.Fprintf(&b, "\n  %s: %s", field, msg)
		}
		return b.String()
	}
	return err.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
