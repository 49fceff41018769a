package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/jenkins-bot/internal/tui/confirm"
	"github.com/altinukshini/jenkins-bot/internal/ui"
)

// Dispatcher answers one chat command line on behalf of a user.
type Dispatcher interface {
	Dispatch(ctx context.Context, user, line string) string
}

// App is an interactive console that sends command lines to the bot as a
// single user and keeps the replies in a scrollable transcript.
type App struct {
	ctx    context.Context
	bot    Dispatcher
	user   string
	target string

	input         textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	confirmDialog confirm.Model

	transcript []string
	history    []string
	histPos    int

	busy     bool
	status   string
	showHelp bool
	ready    bool
	width    int
	height   int
}

func New(ctx context.Context, bot Dispatcher, user, target string) App {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = ui.StylePrompt
	ti.Placeholder = "find <factor> ... (f1 for help)"
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.StyleInfo

	return App{
		ctx:     ctx,
		bot:     bot,
		user:    user,
		target:  target,
		input:   ti,
		spinner: sp,
		status:  "Ready",
	}
}

func (a App) Init() tea.Cmd {
	return textinput.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(confirm.ResultMsg); ok {
		if !result.Confirmed {
			a.status = "Cancelled"
			return a, nil
		}
		return a.submit(result.Line + " --confirm")
	}

	if a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(msg.Width-4, 1)
		h := a.transcriptHeight()
		if !a.ready {
			a.viewport = viewport.New(msg.Width, h)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = h
		}
		a.refresh()
		return a, nil

	case ui.ReplyMsg:
		a.busy = false
		a.status = "Ready"
		a.transcript = append(a.transcript, msg.Reply, "")
		a.refresh()
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		switch {
		case key.Matches(msg, ui.Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, ui.Keys.Help):
			a.showHelp = true
			return a, nil
		case key.Matches(msg, ui.Keys.Back):
			a.input.Reset()
			return a, nil
		case key.Matches(msg, ui.Keys.PageUp):
			a.viewport.HalfViewUp()
			return a, nil
		case key.Matches(msg, ui.Keys.PageDown):
			a.viewport.HalfViewDown()
			return a, nil
		case key.Matches(msg, ui.Keys.Prev):
			a.recall(-1)
			return a, nil
		case key.Matches(msg, ui.Keys.Next):
			a.recall(1)
			return a, nil
		case key.Matches(msg, ui.Keys.Submit):
			return a.enter()
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) enter() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(a.input.Value())
	if line == "" || a.busy {
		return a, nil
	}
	a.input.Reset()
	a.history = append(a.history, line)
	a.histPos = len(a.history)

	switch strings.ToLower(line) {
	case "quit", "exit":
		return a, tea.Quit
	}

	if target, ok := unconfirmedClear(line); ok {
		a.confirmDialog = confirm.New("Clear history",
			fmt.Sprintf("Forget the build history of %s?", target), line)
		return a, nil
	}
	return a.submit(line)
}

func (a App) submit(line string) (tea.Model, tea.Cmd) {
	a.busy = true
	a.status = "Running " + line
	a.transcript = append(a.transcript, ui.StylePrompt.Render("> ")+line)
	a.refresh()
	return a, tea.Batch(a.spinner.Tick, a.dispatch(line))
}

func (a App) dispatch(line string) tea.Cmd {
	ctx, bot, user := a.ctx, a.bot, a.user
	return func() tea.Msg {
		return ui.ReplyMsg{Line: line, Reply: bot.Dispatch(ctx, user, line)}
	}
}

// recall moves through previously entered lines; stepping past the newest
// entry clears the prompt.
func (a *App) recall(step int) {
	if len(a.history) == 0 {
		return
	}
	a.histPos = min(max(a.histPos+step, 0), len(a.history))
	if a.histPos == len(a.history) {
		a.input.Reset()
		return
	}
	a.input.SetValue(a.history[a.histPos])
	a.input.CursorEnd()
}

// unconfirmedClear reports whether line is a clear command lacking the
// confirmation flag, and whose history it targets.
func unconfirmedClear(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) > 0 && strings.EqualFold(strings.TrimPrefix(fields[0], "!"), "jenkins") {
		fields = fields[1:]
	}
	if len(fields) == 0 || !strings.EqualFold(strings.TrimPrefix(fields[0], "!"), "clear") {
		return "", false
	}
	target := "your account"
	for _, f := range fields[1:] {
		if f == "--confirm" {
			return "", false
		}
		if !strings.HasPrefix(f, "--") {
			target = f
		}
	}
	return target, true
}

func (a *App) refresh() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(lipgloss.NewStyle().Width(a.width).Render(strings.Join(a.transcript, "\n")))
	a.viewport.GotoBottom()
}

// header(1) + prompt(1) + statusbar(1)
func (a App) transcriptHeight() int {
	return max(a.height-3, 1)
}

func (a App) View() string {
	if !a.ready {
		return "\n  Initializing..."
	}
	header := RenderHeader(a.target, a.user, a.width)

	var content string
	switch {
	case a.showHelp:
		content = a.renderHelp()
	case a.confirmDialog.IsActive():
		content = lipgloss.Place(a.width, a.transcriptHeight(), lipgloss.Center, lipgloss.Center, a.confirmDialog.View())
	default:
		content = a.viewport.View()
	}

	status := a.status
	if a.busy {
		status = a.spinner.View() + " " + status
	}
	statusBar := RenderStatusBar(status, a.contextHints(), a.width)

	return header + "\n" + content + "\n" + a.input.View() + "\n" + statusBar
}

func (a App) contextHints() []key.Binding {
	if a.confirmDialog.IsActive() {
		return nil
	}
	return []key.Binding{ui.Keys.Submit, ui.Keys.Prev, ui.Keys.PageUp, ui.Keys.Help, ui.Keys.Quit}
}

func (a App) renderHelp() string {
	bold := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Keys") + "\n\n")
	b.WriteString(row("enter", "Run the command line"))
	b.WriteString(row("up / down", "Previous / next command"))
	b.WriteString(row("pgup / pgdn", "Scroll the transcript"))
	b.WriteString(row("esc", "Clear the prompt"))
	b.WriteString(row("ctrl+c", "Quit"))

	b.WriteString("\n" + bold.Render("  Commands") + "\n\n")
	b.WriteString(row("find", "find <factor> ..."))
	b.WriteString(row("build", "build <index> ... | build <alias> [factor ...]"))
	b.WriteString(row("history", "history [user]"))
	b.WriteString(row("clear", "clear [user] (asks for confirmation)"))
	b.WriteString(row("buildalias", "buildalias [alias] [factor ...] [--parameters=<query>]"))
	b.WriteString(row("token", "token [TOKEN]"))

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(max(a.width-2, 1)).Height(max(a.transcriptHeight()-2, 1))
	return style.Render(b.String())
}
