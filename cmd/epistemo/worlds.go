package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/epistemolab/epistemo/worlds"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTable lays out rows under headers with per-column widths.
func renderTable(title string, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", sum(widths)+2*len(widths))))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			sb.WriteString(cellStyle.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

var worldsFlags struct {
	props     int
	sentences string
}

var worldsCmd = &cobra.Command{
	Use:   "worlds",
	Short: "Enumerate the possible worlds over n base propositions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sentences []string
		if worldsFlags.sentences != "" {
			for _, s := range strings.Split(worldsFlags.sentences, ",") {
				sentences = append(sentences, strings.TrimSpace(s))
			}
			if worldsFlags.props == 0 {
				worldsFlags.props = len(sentences)
			}
		}
		space, err := worlds.New(worldsFlags.props, sentences)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, space.NumWorlds())
		for w := 0; w < space.NumWorlds(); w++ {
			view, _ := space.World(w)
			rows = append(rows, []string{
				view.Label, view.Bitstring, view.Notation, view.Sentence,
			})
		}
		title := fmt.Sprintf("%d worlds over %d propositions", space.NumWorlds(), space.NumProps())
		fmt.Fprint(cmd.OutOrStdout(), renderTable(title, []string{"World", "Bits", "Notation", "Reads as"}, rows))

		props, note := space.AllPropositions()
		if note != "" {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(note))
			return nil
		}
		propRows := make([][]string, 0, len(props))
		for _, p := range props {
			worldLabels := make([]string, len(p.Worlds))
			for i, w := range p.Worlds {
				worldLabels[i] = "W" + strconv.Itoa(w)
			}
			propRows = append(propRows, []string{
				p.Label, p.Bitstring, strings.Join(worldLabels, " "),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), renderTable(
			fmt.Sprintf("%d propositions", len(props)),
			[]string{"Prop", "Bits", "Worlds"}, propRows))
		return nil
	},
}

func init() {
	worldsCmd.Flags().IntVar(&worldsFlags.props, "props", 2, "number of base propositions (1..20)")
	worldsCmd.Flags().StringVar(&worldsFlags.sentences, "sentences", "", "comma-separated sentence readings for the propositions")
	rootCmd.AddCommand(worldsCmd)
}
