package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nanosheet/internal/ops"
	"nanosheet/internal/persist"
	"nanosheet/internal/relay"
	"nanosheet/internal/sheet"
	"nanosheet/internal/undo"
)

// newEditCmd groups the one-shot mutations: each subcommand dials a running
// server, syncs the sheet over the relay, applies the operation through an
// engine attributed to --user, and disconnects. Updates are forwarded to
// the server synchronously, so the sheet is consistent by the time the
// command returns.
func newEditCmd(app *App) *cobra.Command {
	var server string
	var yes bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply a single sheet mutation against a running server",
		Example: strings.TrimSpace(`
  # Move the card at t-xxxx/c-0 above the card at t-yyyy in lane c-2
  nanosheet edit move t-xxxx c-0 t-yyyy c-2

  # Delete a card (deleting the header slot removes the whole lane)
  nanosheet edit delete t-xxxx c-0 --yes

  # Duplicate lane c-1, sharing its card records
  nanosheet edit duplicate-lane c-1
`),
	}
	cmd.PersistentFlags().StringVar(&server, "server", "http://127.0.0.1:8787", "Base URL of a running nanosheet server")
	cmd.PersistentFlags().BoolVar(&yes, "yes", false, "Approve destructive operations without prompting")

	withEngine := func(cmd *cobra.Command, fn func(e *ops.Engine) error) error {
		st, err := resolveStore(app)
		if err != nil {
			return err
		}
		sheetID, err := resolveSheetID(app, st)
		if err != nil {
			return err
		}

		base := strings.TrimRight(server, "/")
		wsURL := "ws" + strings.TrimPrefix(base, "http") + "/yjs/" + sheetID

		sh := sheet.New(sheetID)
		conn, err := relay.Connect(cmd.Context(), wsURL, sh)
		if err != nil {
			return fmt.Errorf("connect %s: %w", wsURL, err)
		}
		defer conn.Close()

		user := app.User
		if user == "" {
			user = "cli"
		}
		e := ops.NewEngine(sh, user, undo.NewLedger())
		e.Persist = persist.NewClient(base)
		e.Confirm = func(msg string) bool {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return yes
		}
		e.Toast = func(msg string) {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return fn(e)
	}

	move := &cobra.Command{
		Use:   "move <from-time> <from-lane> <target-time> <target-lane>",
		Short: "Move a card, inserting before the target slot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(e *ops.Engine) error {
				return e.Move(args[0], args[1], args[2], args[3], true)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <time> <lane>",
		Short: "Delete a card; on the header slot, the whole lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(e *ops.Engine) error {
				return e.Delete(args[0], args[1])
			})
		},
	}

	deleteLane := &cobra.Command{
		Use:   "delete-lane <lane>",
		Short: "Remove a lane and all its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(e *ops.Engine) error {
				return e.DeleteLane(args[0])
			})
		},
	}

	duplicateLane := &cobra.Command{
		Use:   "duplicate-lane <lane>",
		Short: "Insert a copy of a lane after it, sharing card records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(e *ops.Engine) error {
				return e.DuplicateLane(args[0])
			})
		},
	}

	reorderLanes := &cobra.Command{
		Use:   "reorder-lanes <from-index> <to-index>",
		Short: "Move a lane to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("from-index: %w", err)
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("to-index: %w", err)
			}
			return withEngine(cmd, func(e *ops.Engine) error {
				return e.ReorderLane(from, to)
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <card-id> <title>",
		Short: "Rename a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(e *ops.Engine) error {
				if err := e.Rename(args[0], args[1]); err != nil {
					return err
				}
				e.CommitRename(args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(move, del, deleteLane, duplicateLane, reorderLanes, rename)
	return cmd
}
