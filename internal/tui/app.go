package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lu-zhengda/devdash/internal/config"
	"github.com/lu-zhengda/devdash/internal/detect"
	"github.com/lu-zhengda/devdash/internal/gitstat"
	"github.com/lu-zhengda/devdash/internal/port"
	"github.com/lu-zhengda/devdash/internal/proc"
	"github.com/lu-zhengda/devdash/internal/runner"
	"github.com/lu-zhengda/devdash/internal/store"
	"github.com/muesli/reflow/wordwrap"
)

// projectRow is one dashboard entry: a project plus everything known
// about it on this machine.
type projectRow struct {
	Project    store.Project
	Path       string
	RunCommand string
	Git        *gitstat.Status
}

// Messages for async operations.
type projectsLoadedMsg struct {
	rows []projectRow
	err  error
}

type gitDoneMsg struct {
	name   string
	status *gitstat.Status
}

type portsDoneMsg struct {
	records []port.Record
}

type startDoneMsg struct {
	key string
	err error
}

type stopDoneMsg struct {
	key string
}

type refreshTickMsg time.Time

type scanTickMsg time.Time

// Model is the main Bubbletea model for the devdash dashboard.
type Model struct {
	store     *store.Store
	machineID string
	manager   *proc.Manager
	scanner   *port.Scanner
	cfg       *config.Config
	version   string

	rows   []projectRow
	cursor int

	ports    []port.Record
	scanning bool

	logView  viewport.Model
	logKey   string // project whose log the viewport currently shows
	logLines int    // lines rendered so far, to keep follow cheap

	spinner spinner.Model
	loading bool
	err     error

	width  int
	height int
}

// New creates the dashboard model.
func New(st *store.Store, machineID string, manager *proc.Manager, scanner *port.Scanner, cfg *config.Config, version string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)

	return Model{
		store:     st,
		machineID: machineID,
		manager:   manager,
		scanner:   scanner,
		cfg:       cfg,
		version:   version,
		spinner:   sp,
		loading:   true,
		scanning:  true,
		logView:   viewport.New(0, 0),
	}
}

// Init loads the project list and kicks off the first port scan.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadProjects(), m.doScan(), refreshTick(m.cfg), scanTick(m.cfg))
}

func refreshTick(cfg *config.Config) tea.Cmd {
	return tea.Tick(time.Duration(cfg.RefreshInterval)*time.Second, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func scanTick(cfg *config.Config) tea.Cmd {
	return tea.Tick(time.Duration(cfg.ScanInterval)*time.Second, func(t time.Time) tea.Msg {
		return scanTickMsg(t)
	})
}

func (m Model) loadProjects() tea.Cmd {
	st, machineID := m.store, m.machineID
	return func() tea.Msg {
		ctx := context.Background()
		projects, err := st.ListProjects(ctx)
		if err != nil {
			return projectsLoadedMsg{err: err}
		}

		rows := make([]projectRow, 0, len(projects))
		for _, p := range projects {
			row := projectRow{Project: p}
			if loc, err := st.Location(ctx, p.ID, machineID); err == nil && loc != nil {
				row.Path = loc.Path
				row.RunCommand = loc.RunCommand
			}
			rows = append(rows, row)
		}
		return projectsLoadedMsg{rows: rows}
	}
}

func (m Model) loadGit() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.rows))
	for _, row := range m.rows {
		if row.Path == "" {
			continue
		}
		name, path := row.Project.Name, row.Path
		cmds = append(cmds, func() tea.Msg {
			status, err := gitstat.Get(context.Background(), &runner.Real{}, path)
			if err != nil {
				return gitDoneMsg{name: name}
			}
			return gitDoneMsg{name: name, status: status}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) doScan() tea.Cmd {
	scanner, cfg := m.scanner, m.cfg
	return func() tea.Msg {
		candidates, err := cfg.Ports()
		if err != nil {
			return portsDoneMsg{}
		}
		return portsDoneMsg{records: scanner.Scan(context.Background(), candidates)}
	}
}

func (m Model) doStart(row projectRow) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		command := row.RunCommand
		if command == "" {
			det, err := detect.Detect(row.Path)
			if err != nil || det.RunCommand == "" {
				return startDoneMsg{key: row.Project.Name, err: fmt.Errorf("no run command for %s", row.Project.Name)}
			}
			command = det.RunCommand
		}
		err := manager.Start(row.Project.Name, row.Path, command)
		return startDoneMsg{key: row.Project.Name, err: err}
	}
}

func (m Model) doStop(key string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		manager.Stop(key)
		return stopDoneMsg{key: key}
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = m.logWidth()
		m.logView.Height = m.panelHeight()
		m.logLines = 0
		m.syncLog()
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.scanning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			if m.cursor >= len(m.rows) {
				m.cursor = max(0, len(m.rows)-1)
			}
			return m, m.loadGit()
		}
		return m, nil

	case gitDoneMsg:
		for i := range m.rows {
			if m.rows[i].Project.Name == msg.name {
				m.rows[i].Git = msg.status
			}
		}
		return m, nil

	case portsDoneMsg:
		m.scanning = false
		m.ports = msg.records
		return m, nil

	case startDoneMsg:
		m.err = msg.err
		return m, nil

	case stopDoneMsg:
		m.syncLog()
		return m, nil

	case refreshTickMsg:
		m.syncLog()
		return m, refreshTick(m.cfg)

	case scanTickMsg:
		m.scanning = true
		return m, tea.Batch(m.doScan(), m.spinner.Tick, scanTick(m.cfg))

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if len(m.rows) > 0 && m.cursor < len(m.rows)-1 {
			m.cursor++
			m.logLines = 0
			m.syncLog()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.logLines = 0
			m.syncLog()
		}
	case "s", "enter":
		if row := m.selectedRow(); row != nil && row.Path != "" {
			if !m.manager.IsRunning(row.Project.Name) {
				m.err = nil
				return m, m.doStart(*row)
			}
		}
	case "x":
		if row := m.selectedRow(); row != nil {
			if m.manager.IsRunning(row.Project.Name) {
				return m, m.doStop(row.Project.Name)
			}
		}
	case "r":
		m.scanning = true
		return m, tea.Batch(m.doScan(), m.spinner.Tick)
	case "g":
		return m, m.loadGit()
	case "R":
		m.loading = true
		return m, tea.Batch(m.loadProjects(), m.spinner.Tick)
	case "ctrl+u", "pgup":
		m.logView.HalfViewUp()
	case "ctrl+d", "pgdown":
		m.logView.HalfViewDown()
	}
	return m, nil
}

func (m *Model) selectedRow() *projectRow {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

// syncLog refreshes the viewport with the selected project's captured
// output, following the tail unless the user has scrolled up.
func (m *Model) syncLog() {
	row := m.selectedRow()
	if row == nil {
		m.logView.SetContent("")
		m.logKey = ""
		m.logLines = 0
		return
	}

	lines := m.manager.Output(row.Project.Name)
	if row.Project.Name == m.logKey && len(lines) == m.logLines {
		return
	}

	follow := m.logView.AtBottom() || row.Project.Name != m.logKey
	m.logView.SetContent(renderLog(lines, m.logView.Width))
	m.logKey = row.Project.Name
	m.logLines = len(lines)
	if follow {
		m.logView.GotoBottom()
	}
}

func (m Model) logWidth() int {
	w := m.width - m.listWidth() - 3
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) listWidth() int {
	w := m.width / 3
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) panelHeight() int {
	// Reserve lines for: header (2), port panel and its title, help bar.
	reserved := 6 + m.portPanelRows()
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) portPanelRows() int {
	rows := len(m.ports)
	if rows > 5 {
		rows = 5
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("devdash %s", m.version))
	running := len(m.manager.RunningKeys())
	stats := dimStyle.Render(fmt.Sprintf("Projects: %d  Running: %d", len(m.rows), running))
	b.WriteString(title + "  " + stats + "\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading projects...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n")
	}

	left := m.viewProjects()
	right := panelTitleStyle.Render("Output") + "\n" + m.logView.View()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right) + "\n")

	b.WriteString(m.viewPorts())

	b.WriteString(helpStyle.Render("j/k:navigate  s:start  x:stop  r:rescan ports  g:git  R:reload  q:quit") + "\n")
	return b.String()
}

func (m Model) viewProjects() string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("Projects") + "\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  none tracked; run 'devdash import'") + "\n")
	}

	height := m.panelHeight()
	for i, row := range m.rows {
		if i >= height {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.rows)-height)) + "\n")
			break
		}

		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		marker := stoppedStyle.Render("○")
		if m.manager.IsRunning(row.Project.Name) {
			marker = runningStyle.Render("●")
		}

		name := truncate(row.Project.Name, 20)
		git := ""
		if row.Git != nil {
			style := cleanStyle
			if row.Git.Dirty() {
				style = dirtyStyle
			}
			git = " " + style.Render(row.Git.Summary())
		} else if row.Path == "" {
			git = " " + dimStyle.Render("(no checkout here)")
		}

		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, marker, name, git))
	}

	return lipgloss.NewStyle().Width(m.listWidth()).Render(b.String())
}

func (m Model) viewPorts() string {
	var b strings.Builder

	title := panelTitleStyle.Render("Ports")
	if m.scanning {
		title += "  " + m.spinner.View() + dimStyle.Render(" scanning")
	}
	b.WriteString(title + "\n")

	if len(m.ports) == 0 {
		b.WriteString(dimStyle.Render("  no candidate ports in use") + "\n")
		return b.String()
	}

	shown := m.portPanelRows()
	parts := make([]string, 0, shown)
	for i, r := range m.ports {
		if i >= shown {
			parts = append(parts, dimStyle.Render(fmt.Sprintf("+%d more", len(m.ports)-shown)))
			break
		}
		if r.OwnerKnown() {
			parts = append(parts, portOwnedStyle.Render(r.String()))
		} else {
			parts = append(parts, portUnknownStyle.Render(r.String()))
		}
	}
	b.WriteString("  " + strings.Join(parts, "  ") + "\n")
	return b.String()
}

// renderLog wraps captured output to the viewport width. Stderr lines
// keep their tag but are colored to stand apart.
func renderLog(lines []string, width int) string {
	if len(lines) == 0 {
		return dimStyle.Render("  no output yet")
	}
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	for _, line := range lines {
		wrapped := wordwrap.String(line, width)
		if strings.HasPrefix(line, proc.StderrPrefix) {
			wrapped = stderrStyle.Render(wrapped)
		}
		b.WriteString(wrapped + "\n")
	}
	return b.String()
}

// truncate truncates a string to max length, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
