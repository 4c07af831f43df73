package main

import (
	"fmt"
	"path/filepath"

	"github.com/itportal/go-portal-client/client"
	"github.com/itportal/go-portal-client/guard"
	"github.com/itportal/go-portal-client/internal/config"
	"github.com/itportal/go-portal-client/session"
	"github.com/itportal/go-portal-client/storage"
	"github.com/itportal/go-portal-client/tabid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app bundles the wired-up client pieces for command handlers. It is
// built once per invocation; no package-level client singleton.
type app struct {
	client *client.Client
	guard  *guard.Guard
}

func newRootCommand(cfg config.Config) *cobra.Command {
	var a app

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Command-line client for the department project portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			built, err := buildApp(cfg)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
	}

	root.AddCommand(
		newLoginCommand(&a, cfg.GetAppName()),
		newLogoutCommand(&a),
		newWhoamiCommand(&a),
		newRefreshCommand(&a),
		newRegisterCommand(&a),
		newRequestsCommand(&a),
		newProjectsCommand(&a),
	)
	return root
}

// buildApp wires storage, tab identity, strategy, client and guard. The
// CLI persists both state keys in its state file: a shell session is the
// closest thing a terminal has to a browser tab.
func buildApp(cfg config.Config) (*app, error) {
	store := storage.NewFileStore(filepath.Join(cfg.GetStateDir(), "state.yaml"))

	tabs, err := tabid.NewManager(store)
	if err != nil {
		return nil, err
	}
	strategy, err := session.NewBearerStrategy(store, tabs)
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg, tabs, strategy, client.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}
	g, err := guard.New(tabs)
	if err != nil {
		return nil, err
	}
	return &app{client: c, guard: g}, nil
}

// requireSession denies authenticated commands up front, mirroring the
// protected-route redirect in the portal UI.
func requireSession(a *app) error {
	if !a.guard.CanEnter() {
		return fmt.Errorf("not signed in: run \"portal login\" first")
	}
	return nil
}
