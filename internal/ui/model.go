package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

type state int

const (
	stateFilePicker state = iota
	stateFile
	stateColumns
	stateProcessing
	stateComplete
)

// Options tunes the preview and chart.
type Options struct {
	PreviewRows int
	ChartSeries int
	ChartRows   int
}

type Model struct {
	opts         Options
	state        state
	filepicker   filepicker.Model
	sessions     []*session
	current      int
	cursor       int
	loading      bool
	pending      []string
	preview      table.Model
	status       string
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	output   string
	warnings []error
	err      error
}

type filesLoadedMsg struct {
	sessions []*session
}

type conversionCompleteMsg conversionResultMsg

type progressMsg float64

type waitForProgressMsg struct{}

// InitialModel builds the UI. Files given in paths are loaded in order
// at startup; with none, the file picker opens first.
func InitialModel(paths []string, opts Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{converter.ExtCSV, converter.ExtXLSX}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles = pickerStyles()

	if opts.PreviewRows <= 0 {
		opts.PreviewRows = converter.PreviewRows
	}
	if opts.ChartSeries <= 0 {
		opts.ChartSeries = converter.ChartSeries
	}
	if opts.ChartRows <= 0 {
		opts.ChartRows = 20
	}

	m := Model{
		opts:       opts,
		state:      stateFilePicker,
		filepicker: fp,
		progress:   progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
	}
	if len(paths) > 0 {
		m.state = stateFile
		m.loading = true
		m.pending = paths
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if len(m.pending) > 0 {
		return tea.Batch(m.filepicker.Init(), loadFiles(m.pending))
	}
	return m.filepicker.Init()
}

// loadFiles loads files one after another so they appear in the order given.
func loadFiles(paths []string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sessions := make([]*session, 0, len(paths))
		for _, p := range paths {
			s := newSession(p)
			s.load(ctx)
			sessions = append(sessions, s)
		}
		return filesLoadedMsg{sessions: sessions}
	}
}

func (m Model) session() *session {
	if m.current < 0 || m.current >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.current]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - 14
		if height < 5 {
			height = 5
		}

		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc":
				if len(m.sessions) > 0 {
					m.state = stateFile
					return m, nil
				}
			}

		case stateFile:
			return m.updateFile(msg)

		case stateColumns:
			return m.updateColumns(msg)

		case stateComplete:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "n", "tab":
				m.status = ""
				return m.switchFile(1), nil
			case "enter", "esc":
				m.state = stateFile
				return m, nil
			}
		}

	case filesLoadedMsg:
		m.loading = false
		m.pending = nil
		m.sessions = append(m.sessions, msg.sessions...)
		m.current = len(m.sessions) - len(msg.sessions)
		m.state = stateFile
		m.status = ""
		m.rebuildPreview()
		return m, nil

	case conversionCompleteMsg:
		m.state = stateFile
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.loading = true
			m.state = stateFile
			return m, loadFiles([]string{path})
		}

		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.err = &converter.UnsupportedFormatError{Ext: strings.ToLower(filepath.Ext(path))}
			return m, cmd
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) updateFile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session()
	if s == nil {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	ctx := context.Background()
	m.err = nil

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.state = stateFilePicker
		return m, nil
	case "tab", "n":
		m.status = ""
		return m.switchFile(1), nil
	case "shift+tab", "p":
		m.status = ""
		return m.switchFile(-1), nil
	}

	if s.err != nil || s.current == nil {
		return m, nil
	}

	switch msg.String() {
	case "c":
		s.cleanEnabled = !s.cleanEnabled
		s.refresh(ctx)
		m.status = ""
	case "d":
		if s.cleanEnabled {
			before := s.current.NumRows()
			s.addOp(ctx, types.RemoveDuplicateRows)
			m.status = fmt.Sprintf("✓ Duplicates removed (%d → %d rows)", before, s.current.NumRows())
		}
	case "f":
		if s.cleanEnabled {
			s.addOp(ctx, types.FillMissingNumericWithMean)
			m.status = "✓ Missing values have been filled"
		}
	case "s":
		m.state = stateColumns
		m.cursor = 0
		return m, nil
	case "v":
		s.showChart = !s.showChart
	case "t":
		if s.format == types.FormatCSV {
			s.format = types.FormatXLSX
		} else {
			s.format = types.FormatCSV
		}
	case "enter":
		m.state = stateProcessing
		return m.convertFile()
	default:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	m.rebuildPreview()
	return m, nil
}

func (m Model) updateColumns(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(s.columns)-1 {
			m.cursor++
		}
	case " ":
		s.selected[m.cursor] = !s.selected[m.cursor]
	case "a":
		s.selectAll(true)
	case "x":
		s.selectAll(false)
	case "enter", "esc":
		s.refresh(context.Background())
		m.rebuildPreview()
		m.state = stateFile
	}
	return m, nil
}

func (m Model) switchFile(delta int) Model {
	if len(m.sessions) == 0 {
		return m
	}
	m.current = (m.current + delta + len(m.sessions)) % len(m.sessions)
	m.state = stateFile
	m.err = nil
	m.rebuildPreview()
	return m
}

// rebuildPreview refreshes the preview table from the current session.
func (m *Model) rebuildPreview() {
	s := m.session()
	if s == nil || s.current == nil {
		m.preview = table.New()
		return
	}

	records := converter.PreviewRecords(s.current, m.opts.PreviewRows)
	header, body := records[0], records[1:]

	cols := make([]table.Column, len(header))
	for i, h := range header {
		w := len(h)
		for _, row := range body {
			if len(row[i]) > w {
				w = len(row[i])
			}
		}
		if w > 24 {
			w = 24
		}
		if w < 4 {
			w = 4
		}
		cols[i] = table.Column{Title: h, Width: w}
	}

	rows := make([]table.Row, len(body))
	for i, row := range body {
		rows[i] = table.Row(row)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(true),
	)
	t.SetStyles(previewStyles())
	m.preview = t
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	s := m.session()
	format := s.format
	req := s.request(&format)

	progressChan := m.progressChan
	resultChan := m.resultChan

	req.Progress = func(done, total int) {
		select {
		case progressChan <- float64(done) / float64(total):
		default:
		}
	}

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				res := converter.Run(context.Background(), req)
				msg := conversionResultMsg{warnings: res.Warnings, err: res.Err}
				if res.Err == nil {
					if err := s.save(res.Export); err != nil {
						msg.err = err
					} else {
						msg.output = s.output
					}
				}

				resultChan <- msg

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		m.progress.SetPercent(0),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateFile:
		return m.viewFile()
	case stateColumns:
		return m.viewColumns()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📀 Sweeper - Data Cleaner & Converter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV or XLSX file to load"))
	s.WriteString("\n\n")
	if m.err != nil {
		s.WriteString(ErrorStyle.Render("✗ " + converter.MapError(m.err).Message))
		s.WriteString("\n\n")
	}
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	help := "Press q to quit"
	if len(m.sessions) > 0 {
		help = "esc: back to files • q: quit"
	}
	s.WriteString(HelpStyle.Render(help))

	return s.String()
}

func (m Model) viewFile() string {
	s := m.session()
	if m.loading || s == nil {
		return BoxStyle.Render(TitleStyle.Render("📀 Loading..."))
	}

	var b strings.Builder

	title := fmt.Sprintf("📔 %s", s.info.Name)
	if len(m.sessions) > 1 {
		title += MutedStyle.Render(fmt.Sprintf("  (file %d of %d)", m.current+1, len(m.sessions)))
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Size: %s", humanize.Bytes(uint64(s.info.Size)))))
	b.WriteString("\n")

	fileErr := s.err
	if fileErr == nil && s.current == nil {
		fileErr = s.viewErr
	}
	if fileErr != nil {
		msg := converter.MapError(fileErr)
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ %s (%s)", msg.Message, msg.Code)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("tab: next file • o: open another file • q: quit"))
		return BoxStyle.Render(b.String())
	}

	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d rows × %d columns", s.current.NumRows(), s.current.NumCols())))
	b.WriteString("\n")
	b.WriteString(m.preview.View())
	b.WriteString("\n\n")

	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}

	b.WriteString(fmt.Sprintf("%s Clean data", check(s.cleanEnabled)))
	if s.cleanEnabled {
		applied := "none"
		if len(s.ops) > 0 {
			names := make([]string, len(s.ops))
			for i, op := range s.ops {
				names[i] = string(op)
			}
			applied = strings.Join(names, " → ")
		}
		b.WriteString(MutedStyle.Render(fmt.Sprintf("   applied: %s", applied)))
	}
	b.WriteString("\n")

	selected := s.selectedColumns()
	cols := "all"
	if selected != nil {
		cols = fmt.Sprintf("%d of %d", len(selected), len(s.columns))
	}
	b.WriteString(fmt.Sprintf("Columns: %s\n", cols))
	b.WriteString(fmt.Sprintf("Convert to: %s\n", CheckedStyle.Render(s.format.Label())))

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render(m.status))
		b.WriteString("\n")
	}
	for _, w := range s.warnings {
		b.WriteString(WarningStyle.Render("⚠ " + converter.MapError(w).Message))
		b.WriteString("\n")
	}
	if s.viewErr != nil {
		b.WriteString(ErrorStyle.Render("✗ " + converter.MapError(s.viewErr).Message))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(ErrorStyle.Render("✗ " + converter.MapError(m.err).Message))
		b.WriteString("\n")
	}

	if s.showChart {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("📈 Data Visualization"))
		b.WriteString("\n")
		series, err := converter.ChartData(s.current, m.opts.ChartSeries)
		if errors.Is(err, converter.ErrNoNumericColumns) {
			b.WriteString(WarningStyle.Render("⚠ " + converter.MapError(err).Message))
			b.WriteString("\n")
		} else {
			b.WriteString(renderChart(series, m.opts.ChartRows))
		}
	}

	help := "c: clean • s: columns • v: chart • t: format • enter: convert • o: open • tab: next file • q: quit"
	if s.cleanEnabled {
		help = "d: remove duplicates • f: fill missing • " + help
	}
	b.WriteString(HelpStyle.Render(help))

	return BoxStyle.Render(b.String())
}

func (m Model) viewColumns() string {
	s := m.session()
	var b strings.Builder

	b.WriteString(TitleStyle.Render("📊 Select Columns to Convert"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", s.info.Name)))
	b.WriteString("\n\n")

	for i, name := range s.columns {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if s.selected[i] {
			checked = "✓"
		}

		line := fmt.Sprintf("%s [%s] %s", cursor, checked, name)
		if c := s.table.Column(name); c != nil {
			line += MutedStyle.Render(" (" + c.Kind.String() + ")")
		}

		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else if s.selected[i] {
			line = CheckedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • a: all • x: none • enter: done • q: quit"))

	return BoxStyle.Render(b.String())
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🔄 Processing..."))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Converting %s to %s...", m.session().info.Name, m.session().format.Label()))
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())

	return BoxStyle.Render(b.String())
}

func (m Model) viewComplete() string {
	s := m.session()
	var b strings.Builder

	b.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	b.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	outputPath := s.output
	if len(outputPath) > maxPathLen {
		outputPath = "..." + outputPath[len(outputPath)-maxPathLen+3:]
	}

	b.WriteString(fmt.Sprintf("Input:  %s\n", s.info.Name))
	b.WriteString(fmt.Sprintf("Output: %s\n", OutputPathStyle.Render(outputPath)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Rows: %d  Columns: %d\n", s.current.NumRows(), s.current.NumCols()))

	help := "enter: back • q: quit"
	if len(m.sessions) > 1 {
		help = "enter: back • tab: next file • q: quit"
	}
	b.WriteString(HelpStyle.Render(help))

	return BoxStyle.Render(b.String())
}
