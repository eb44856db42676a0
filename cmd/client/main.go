// Package main is the admin CLI: it edits a local draft of the portfolio
// content and saves it to the server.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/SRAS2024/About-Me/internal/client/session"
	"github.com/SRAS2024/About-Me/internal/client/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version   string
	buildDate string
)

// app is shared by every command of one invocation.
type app struct {
	baseURL  string
	username string
	password string
	draft    string
	mode     string
	timeout  time.Duration

	client *http.Client
	store  *storage.FileStore
	sess   *session.Session
	out    io.Writer
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "aboutme",
		Short:         "Edit the portfolio content",
		Version:       fmt.Sprintf("%s (built %s)", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A")),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.open()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.baseURL, "url", getEnv("ABOUTME_URL", "http://localhost:8080"), "server base URL")
	f.StringVar(&a.username, "user", getEnv("ADMIN_USERNAME", "admin"), "admin username")
	f.StringVar(&a.password, "password", getEnv("ADMIN_PASSWORD", ""), "admin password")
	f.StringVar(&a.draft, "draft", getEnv("ABOUTME_DRAFT", storage.DefaultFile), "path of the local draft file")
	f.StringVar(&a.mode, "refresh", "replace", "how server state is merged: replace | assets")
	f.DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		newStateCmd(a),
		newLinksCmd(a),
		newTextsCmd(a, "traits", "Replace the traits in the draft"),
		newTextsCmd(a, "accomplishments", "Replace the accomplishments in the draft"),
		newSaveCmd(a),
		newDiscardCmd(a),
		newLocaleCmd(a),
		newPhotoCmd(a),
		newResumeCmd(a),
		newShellCmd(a),
	)
	return root
}

// open builds the session and restores the stored draft, if any.
func (a *app) open() error {
	var mode session.RefreshMode
	switch strings.ToLower(a.mode) {
	case "replace", "":
		mode = session.ReplaceAll
	case "assets":
		mode = session.AssetsOnly
	default:
		return fmt.Errorf("unknown refresh mode %q", a.mode)
	}

	if a.client == nil {
		a.client = &http.Client{Timeout: a.timeout}
	}
	a.store = storage.NewFileStore(a.draft)
	a.sess = session.New(session.NewAPI(a.baseURL, a.username, a.password, a.client), mode)

	d, ok, err := a.store.Load()
	if err != nil {
		return err
	}
	if ok {
		a.sess.Restore(d)
	}
	return nil
}

// run calls fn and stores the draft whatever fn returned.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if saveErr := a.store.Save(a.sess.Draft()); saveErr != nil && err == nil {
		err = fmt.Errorf("store draft: %w", saveErr)
	}
	return err
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
