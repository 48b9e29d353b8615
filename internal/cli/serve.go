package cli

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"nanosheet/internal/relay"
	"nanosheet/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server and cards API",
		Long: strings.TrimSpace(`
Run the websocket sync server and the HTTP cards API.

Clients connect to /yjs/{sheetId} for live document sync; card records,
lane titles, and debounced sheet snapshots are persisted to the store's
SQLite database.
`),
		Example: strings.TrimSpace(`
# Serve on localhost
nanosheet serve --addr 127.0.0.1:8787

# Serve a specific store directory
nanosheet --dir /srv/boards/.nanosheet serve --addr :8787
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveStore(app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, st)
			if err != nil {
				return err
			}
			defer db.Close()

			hub := relay.NewHub(db)
			defer hub.FlushAll()

			srv := web.NewServer(web.ServerConfig{Addr: strings.TrimSpace(addr)}, db, hub)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "Listen address")
	return cmd
}
