package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/complyviz/complyviz/pkg/config"
	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/pipeline"
	"github.com/complyviz/complyviz/pkg/rulebase"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newExploreCmd creates the explore command.
func newExploreCmd() *cobra.Command {
	var (
		configPath string
		seed       string
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactively expand and collapse country groups",
		Long: `Explore opens a terminal view of the rule base. Toggling a group
recomputes the layout live, showing how countries are revealed and how
trigger edges reroute to group members.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if seed != "" {
				cfg.Store.Seed = seed
			}

			runner, err := buildRunner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer runner.Close(cmd.Context())

			doc, err := runner.Fetch(cmd.Context(), pipeline.Options{Logger: logger})
			if err != nil {
				return err
			}

			model := NewExploreModel(doc)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&seed, "seed", "", "JSON seed file for the memory store")

	return cmd
}

// =============================================================================
// ExploreModel - Interactive group expand/collapse
// =============================================================================

// ExploreModel is the bubbletea model for the explore view. It holds the
// immutable domain graph, the expand state, and the layout recomputed after
// every toggle.
type ExploreModel struct {
	Doc    rulebase.Document
	Groups []rulebase.Node
	State  *layout.ExpandState
	Result layout.Result
	Cursor int
}

// NewExploreModel creates an explore model with all groups collapsed.
func NewExploreModel(doc rulebase.Document) ExploreModel {
	rulebase.Normalize(&doc)
	m := ExploreModel{
		Doc:    doc,
		Groups: doc.Groups(),
		State:  layout.NewExpandState(),
	}
	m.Result = layout.Compute(m.Doc, m.State.Snapshot())
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Groups)-1 {
			m.Cursor++
		}
	case "enter", " ":
		if len(m.Groups) > 0 {
			m.State.Toggle(m.Groups[m.Cursor].ID)
			m.Result = layout.Compute(m.Doc, m.State.Snapshot())
		}
	case "a":
		ids := make([]string, len(m.Groups))
		for i, g := range m.Groups {
			ids[i] = g.ID
		}
		m.State = layout.ExpandAll(ids)
		m.Result = layout.Compute(m.Doc, m.State.Snapshot())
	case "n":
		m.State = layout.NewExpandState()
		m.Result = layout.Compute(m.Doc, m.State.Snapshot())
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Rule Base Explorer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle  a expand all  n collapse all  q quit"))
	b.WriteString("\n\n")

	for i, g := range m.Groups {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		marker := "▸"
		if m.State.IsExpanded(g.ID) {
			marker = "▾"
		}
		line := fmt.Sprintf("%s%s %s (%d countries)", cursor, marker, g.DisplayLabel(), g.MemberCount())

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")

		if m.State.IsExpanded(g.ID) {
			for _, country := range g.Countries {
				b.WriteString(listDimStyle.Render("      " + country))
				b.WriteString("\n")
			}
		}
	}

	if len(m.Groups) == 0 {
		b.WriteString(listDimStyle.Render("  no country groups in the rule base"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf(
		"  %d nodes · %d edges · canvas %.0f×%.0f",
		len(m.Result.Nodes), len(m.Result.Edges), m.Result.Width, m.Result.Height)))
	b.WriteString("\n")

	return b.String()
}
