package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/reach"
	"github.com/matzehuels/hexplanner/pkg/store"
)

// cellWidth is the number of terminal columns one hex cell occupies.
const cellWidth = 6

var (
	tuiEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// plannerKeys are the key bindings of the planner TUI.
type plannerKeys struct {
	Up, Down, Left, Right key.Binding
	Toggle                key.Binding
	NextCategory          key.Binding
	PrevCategory          key.Binding
	Clear, ClearAll       key.Binding
	Save, Quit            key.Binding
}

func newPlannerKeys() plannerKeys {
	return plannerKeys{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Toggle:       key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("␣", "toggle")),
		NextCategory: key.NewBinding(key.WithKeys("tab"), key.WithHelp("⇥", "next category")),
		PrevCategory: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧⇥", "prev category")),
		Clear:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear category")),
		ClearAll:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Save:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k plannerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NextCategory, k.Clear, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k plannerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.NextCategory, k.PrevCategory},
		{k.Clear, k.ClearAll, k.Save, k.Quit},
	}
}

// =============================================================================
// PlannerModel - Interactive selection editor
// =============================================================================

// PlannerModel is the bubbletea model for editing a selection on the grid.
// Even columns are drawn half a row lower, matching the hex layout. The left
// mouse button toggles nodes by clicking or dragging across them.
type PlannerModel struct {
	Planner *planner.Planner
	Cursor  hexgrid.Cell
	// Save is set when the user quits with "s".
	Save    bool
	Message string

	categories []string
	min, max   hexgrid.Cell
	keys       plannerKeys
	help       help.Model
	drag       *planner.Drag
}

// NewPlannerModel creates a model with the cursor on the category root.
func NewPlannerModel(p *planner.Planner) PlannerModel {
	m := PlannerModel{
		Planner:    p,
		categories: p.Tree().Categories(),
		keys:       newPlannerKeys(),
		help:       help.New(),
		drag:       planner.NewDrag(p),
	}
	m.resetCursor()
	return m
}

// resetCursor fits the bounds to the current category and moves the cursor
// to its root.
func (m *PlannerModel) resetCursor() {
	tree := m.Planner.Tree()
	members := tree.Members(m.Planner.Category())
	for i, n := range members {
		if i == 0 {
			m.min, m.max = n.Cell, n.Cell
			continue
		}
		m.min.Col, m.max.Col = min(m.min.Col, n.Cell.Col), max(m.max.Col, n.Cell.Col)
		m.min.Row, m.max.Row = min(m.min.Row, n.Cell.Row), max(m.max.Row, n.Cell.Row)
	}
	if root, ok := tree.Node(m.Planner.Snapshot().Root); ok {
		m.Cursor = root.Cell
	} else {
		m.Cursor = m.min
	}
}

func (m PlannerModel) Init() tea.Cmd {
	return nil
}

func (m PlannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m PlannerModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.Message = ""
	grid := m.Planner.Grid()
	if grid == nil {
		return m, nil
	}
	cell, onGrid := m.cellAt(msg.X, msg.Y)
	pt := grid.CellCenter(cell)

	var id string
	var toggled bool
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.drag.Down()
		if onGrid {
			id, toggled = m.drag.Move(pt)
		}
	case tea.MouseActionMotion:
		if !m.drag.Active() || !onGrid {
			return m, nil
		}
		id, toggled = m.drag.Move(pt)
	case tea.MouseActionRelease:
		if !m.drag.Active() {
			return m, nil
		}
		if !onGrid {
			m.drag.Cancel()
			return m, nil
		}
		id, toggled = m.drag.Up(pt)
	}

	if onGrid {
		m.Cursor = cell
	}
	if toggled {
		m.Message = fmt.Sprintf("toggled %s", id)
	}
	return m, nil
}

// cellAt maps a terminal position to the cell drawn there. Each cell owns
// its label line and the blank line below it.
func (m PlannerModel) cellAt(x, y int) (hexgrid.Cell, bool) {
	line := y - strings.Count(m.header(m.Planner.Snapshot()), "\n")
	if x < 0 || line < 0 {
		return hexgrid.Cell{}, false
	}
	col := m.min.Col + x/cellWidth
	if col > m.max.Col {
		return hexgrid.Cell{}, false
	}
	if col&1 == 0 {
		line--
	}
	if line < 0 {
		return hexgrid.Cell{}, false
	}
	cell := hexgrid.Cell{Col: col, Row: m.min.Row + line/2}
	if cell.Row > m.max.Row {
		return hexgrid.Cell{}, false
	}
	return cell, true
}

func (m PlannerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		m.Save = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.Cursor.Row = max(m.Cursor.Row-1, m.min.Row)
	case key.Matches(msg, m.keys.Down):
		m.Cursor.Row = min(m.Cursor.Row+1, m.max.Row)
	case key.Matches(msg, m.keys.Left):
		m.Cursor.Col = max(m.Cursor.Col-1, m.min.Col)
	case key.Matches(msg, m.keys.Right):
		m.Cursor.Col = min(m.Cursor.Col+1, m.max.Col)
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.Planner.ToggleCell(m.Cursor); ok {
			m.Message = fmt.Sprintf("toggled %s", id)
		}
	case key.Matches(msg, m.keys.NextCategory):
		m.switchCategory(1)
	case key.Matches(msg, m.keys.PrevCategory):
		m.switchCategory(-1)
	case key.Matches(msg, m.keys.Clear):
		m.Planner.ClearCategory()
		m.Message = "cleared " + m.Planner.Category()
	case key.Matches(msg, m.keys.ClearAll):
		m.Planner.ClearAll()
		m.Message = "cleared all categories"
	}
	return m, nil
}

func (m *PlannerModel) switchCategory(step int) {
	n := len(m.categories)
	i := slices.Index(m.categories, m.Planner.Category())
	next := m.categories[((i+step)%n+n)%n]
	if err := m.Planner.SwitchCategory(next); err != nil {
		m.Message = err.Error()
		return
	}
	m.resetCursor()
}

func (m PlannerModel) View() string {
	var b strings.Builder
	snap := m.Planner.Snapshot()
	tree := m.Planner.Tree()

	b.WriteString(m.header(snap))

	// Two text lines per row; even columns start one line lower.
	lines := 2*(m.max.Row-m.min.Row+1) + 1
	for line := 0; line < lines; line++ {
		for col := m.min.Col; col <= m.max.Col; col++ {
			off := line
			if col&1 == 0 {
				off--
			}
			if off < 0 || off%2 != 0 {
				b.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			cell := hexgrid.Cell{Col: col, Row: m.min.Row + off/2}
			b.WriteString(m.cellLabel(cell, snap))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if id, ok := tree.NodeAt(snap.Category, m.Cursor); ok {
		n, _ := tree.Node(id)
		b.WriteString(StyleHighlight.Render(strings.ReplaceAll(n.Name, "\n", " ")))
		b.WriteString(" " + stateLabel(snap.State(id)))
		if len(n.Effects) > 0 {
			b.WriteString(StyleDim.Render("  " + strings.Join(n.Effects, ", ")))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(StyleDim.Render(m.Cursor.String()) + "\n")
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d selected · %d active · %d orphaned",
		snap.Selected, snap.Visible.Active.Len(), snap.Visible.Orphan.Len())))
	if m.Message != "" {
		b.WriteString("  " + StyleSuccess.Render(m.Message))
	}
	b.WriteString("\n")
	return b.String()
}

// header renders everything above the grid.
func (m PlannerModel) header(snap planner.Snapshot) string {
	return StyleTitle.Render(snap.Category) +
		StyleDim.Render(fmt.Sprintf("  [%d/%d]", slices.Index(m.categories, snap.Category)+1, len(m.categories))) +
		"\n" + m.help.View(m.keys) + "\n\n"
}

// cellLabel renders one cell, padded to cellWidth.
func (m PlannerModel) cellLabel(cell hexgrid.Cell, snap planner.Snapshot) string {
	id, ok := m.Planner.Tree().NodeAt(snap.Category, cell)
	text := "·"
	if ok {
		text = id
	}
	if len(text) > cellWidth-2 {
		text = text[:cellWidth-2]
	}
	text = fmt.Sprintf("%-*s", cellWidth-2, text)

	style := tuiEmptyStyle
	if ok {
		style = stateStyles[snap.State(id)]
		if snap.State(id) == reach.Active {
			style = style.Bold(true)
		}
	}
	if cell == m.Cursor {
		return "[" + style.Reverse(true).Render(text) + "]"
	}
	return " " + style.Render(text) + " "
}

// =============================================================================
// Command
// =============================================================================

func (c *CLI) tuiCommand() *cobra.Command {
	var name, category string

	cmd := &cobra.Command{
		Use:   "tui [plan-id]",
		Short: "Edit a plan interactively",
		Long: `Open an interactive hex grid editor. With a plan ID the plan is loaded
and saved back on "s"; without one a new plan is created on save.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.workspace()
			if err != nil {
				return err
			}

			var plan *store.Plan
			if len(args) == 1 {
				if plan, err = c.loadPlan(cmd, args[0]); err != nil {
					return err
				}
				if category == "" {
					category = plan.Category
				}
			}
			var selection []string
			if plan != nil {
				selection = plan.Selected
			}
			p, err := ws.NewPlanner(category, selection)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewPlannerModel(p), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("run planner: %w", err)
			}
			m := final.(PlannerModel)
			if !m.Save {
				printInfo("Quit without saving")
				return nil
			}

			if plan == nil {
				plan = store.NewPlan(name, p.Category())
			}
			plan.Update(p.Category(), p.Selection())

			plans, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer plans.Close()
			if err := plans.Set(ctx, plan); err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "save plan")
			}
			printSuccess("Saved plan %s", StyleHighlight.Render(plan.Name))
			printKeyValue("ID", plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Untitled", "name for a new plan")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to open")
	return cmd
}
