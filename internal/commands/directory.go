package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/directory/emulator"
)

func newDirectoryCommand(a *app) *cobra.Command {
	dirCmd := &cobra.Command{
		Use:   "directory",
		Short: "Local MonkeyPod directory",
	}
	dirCmd.AddCommand(newDirectoryServeCommand(a))
	return dirCmd
}

func newDirectoryServeCommand(a *app) *cobra.Command {
	var dbPath, addr, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local MonkeyPod entity API backed by a bbolt file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				s, err := a.secrets()
				if err != nil {
					return err
				}
				token = s.MonkeyPodToken
			}

			store, err := emulator.Open(a.path(dbPath))
			if err != nil {
				return err
			}
			defer store.Close()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			srv := &http.Server{
				Handler:           emulator.NewRouter(store, token, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(cmd.Context(), a, srv, ln)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "directory.db", "bbolt database file, relative to the project")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required from clients (default MONKEYPOD_TOKEN)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, a *app, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", "http://"+ln.Addr().String()).Msg("directory listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	a.log.Info().Msg("directory stopped")
	return nil
}
