package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"nanosheet/internal/orient"
	"nanosheet/internal/sheet"
)

const cellWidth = 14

func newShowCmd(app *App) *cobra.Command {
	var orientation string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render a sheet's grid in the terminal",
		Long: strings.TrimSpace(`
Render the stored snapshot of a sheet as a grid.

The default "columns" orientation draws lanes as columns with time flowing
down; "rows" draws lanes as rows with time flowing right. Orientation is a
pure view preference and never changes the stored sheet.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveStore(app)
			if err != nil {
				return err
			}
			sheetID, err := resolveSheetID(app, st)
			if err != nil {
				return err
			}

			name := strings.TrimSpace(orientation)
			if name == "" {
				prefs, err := st.LoadPrefs()
				if err != nil {
					return err
				}
				name = prefs.Orientation
			}
			strategy := orient.ByName(name)

			db, err := openDB(cmd.Context(), st)
			if err != nil {
				return err
			}
			defer db.Close()

			updates, ok, err := db.LoadSnapshot(cmd.Context(), sheetID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot for sheet %q", sheetID)
			}
			sh := sheet.New(sheetID)
			for _, u := range updates {
				sh.Doc.ApplyRemote(u)
			}

			applyColorProfile()
			fmt.Fprint(cmd.OutOrStdout(), renderGrid(sh, strategy))
			return nil
		},
	}

	cmd.Flags().StringVar(&orientation, "orientation", "", `View orientation: "columns" or "rows" (default: prefs)`)
	return cmd
}

// renderGrid draws the sheet with lanes along one axis and time along the
// other, per the chosen orientation. Each occupied cell shows the card
// title on the card's color; the frozen slot row is underlined.
func renderGrid(sh *sheet.Sheet, strategy orient.Strategy) string {
	timeAxis := sh.TimeAxis().ToArray()
	laneAxis := sh.LaneAxis().ToArray()
	times := strategy.Timeline(timeAxis, laneAxis)
	lanes := strategy.Lanes(timeAxis, laneAxis)
	if len(times) == 0 || len(lanes) == 0 {
		return "(empty sheet)\n"
	}

	laneTitle := func(laneID string) string {
		if t, ok := sh.LaneTitles().Get(laneID); ok && strings.TrimSpace(t) != "" {
			return t
		}
		return laneID
	}

	cell := func(timeIdx int, timeID, laneID string) string {
		cardID, ok := sh.CardAt(timeID, laneID)
		if !ok {
			return pad("·")
		}
		card, ok := sh.Card(cardID)
		if !ok {
			return pad("?")
		}
		style := lipgloss.NewStyle()
		if card.Color != "" {
			style = style.Foreground(lipgloss.Color(card.Color))
		}
		if timeIdx == 0 {
			style = style.Bold(true).Underline(true)
		}
		label := card.Title
		if card.Number != 0 {
			label = fmt.Sprintf("%s %d", card.Title, card.Number)
		}
		return style.Render(pad(label))
	}

	header := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	if strategy.TimeFlowsDown() {
		// Lanes as columns: header row of lane titles, one row per slot.
		cols := make([]string, 0, len(lanes)+1)
		cols = append(cols, pad(""))
		for _, laneID := range lanes {
			cols = append(cols, header.Render(pad(laneTitle(laneID))))
		}
		b.WriteString(strings.Join(cols, " "))
		b.WriteByte('\n')

		for i, timeID := range times {
			row := make([]string, 0, len(lanes)+1)
			row = append(row, pad(fmt.Sprintf("t%d", i)))
			for _, laneID := range lanes {
				row = append(row, cell(i, timeID, laneID))
			}
			b.WriteString(strings.Join(row, " "))
			b.WriteByte('\n')
		}
		return b.String()
	}

	// Lanes as rows: one row per lane, time flowing right.
	head := make([]string, 0, len(times)+1)
	head = append(head, pad(""))
	for i := range times {
		head = append(head, header.Render(pad(fmt.Sprintf("t%d", i))))
	}
	b.WriteString(strings.Join(head, " "))
	b.WriteByte('\n')

	for _, laneID := range lanes {
		row := make([]string, 0, len(times)+1)
		row = append(row, header.Render(pad(laneTitle(laneID))))
		for i, timeID := range times {
			row = append(row, cell(i, timeID, laneID))
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(s string) string {
	r := []rune(s)
	if len(r) > cellWidth {
		return string(r[:cellWidth-1]) + "…"
	}
	return s + strings.Repeat(" ", cellWidth-len(r))
}

// applyColorProfile honors NO_COLOR and otherwise trusts the terminal's
// detected capabilities.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}
