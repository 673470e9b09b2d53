package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/views/jobs"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/views/result"
	"github.com/custodia-labs/litmapper/internal/core/domain"
)

// App is the job monitor following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	jobsView   *jobs.View
	resultView *result.View
	statusBar  *status.Bar

	currentView messages.ViewType

	// exitWhenDone quits once every job is terminal.
	exitWhenDone bool

	err    error
	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// Options configures an App.
type Options struct {
	// PollInterval is the delay between status requests.
	PollInterval time.Duration

	// ExitWhenDone quits as soon as every job finishes.
	ExitWhenDone bool
}

// NewApp creates a monitor watching jobIDs.
func NewApp(ctx context.Context, ports *Ports, jobIDs []string, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if len(jobIDs) == 0 {
		return nil, ErrNoJobs
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s)
	bar.SetHints(km.JobsHelp())

	return &App{
		ports:        ports,
		ctx:          ctx,
		styles:       s,
		keymap:       km,
		jobsView:     jobs.NewView(ctx, s, km, ports.Jobs, jobIDs, opts.PollInterval),
		resultView:   result.NewView(s),
		statusBar:    bar,
		currentView:  messages.ViewJobs,
		exitWhenDone: opts.ExitWhenDone,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("litmapper - jobs"),
		a.jobsView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height, a.ready = msg.Width, msg.Height, true
		a.jobsView.SetDimensions(msg.Width, msg.Height)
		a.resultView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewResult {
			if key.Matches(msg, a.keymap.Back) {
				return a, a.switchView(messages.ViewJobs)
			}
			a.resultView, cmd = a.resultView.Update(msg)
			return a, cmd
		}
		a.jobsView, cmd = a.jobsView.Update(msg)
		return a, cmd

	case messages.JobPolled:
		a.jobsView, cmd = a.jobsView.Update(msg)
		a.statusBar.SetCounts(status.Tally(a.jobsView.Jobs()))
		a.statusBar.SetError(a.jobsView.LastError())
		if a.exitWhenDone && a.jobsView.AllDone() {
			return a, tea.Quit
		}
		return a, cmd

	case messages.ResultRequested:
		return a, a.loadResult(msg.Kind, msg.Hash)

	case messages.ResultLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetError(msg.Err)
			return a, nil
		}
		a.err = nil
		a.statusBar.SetError(nil)
		a.resultView.SetResult(msg.Kind, msg.Hash, msg.Result)
		return a, a.switchView(messages.ViewResult)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)
	}

	// Timers and spinner ticks belong to the job list whichever view is shown.
	a.jobsView, cmd = a.jobsView.Update(msg)
	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewResult:
		a.statusBar.SetHints(a.keymap.ResultHelp())
	default:
		a.statusBar.SetHints(a.keymap.JobsHelp())
	}
	return nil
}

func (a *App) loadResult(kind domain.ResourceKind, hash string) tea.Cmd {
	ctx, resources := a.ctx, a.ports.Resources
	return func() tea.Msg {
		r, err := resources.FindHash(ctx, kind, hash)
		return messages.ResultLoaded{Kind: kind, Hash: hash, Result: r, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewResult:
		body = a.resultView.View()
	default:
		body = a.jobsView.View()
	}

	gap := a.height - lipgloss.Height(body) - 1
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		lipgloss.NewStyle().Height(gap).Render(""),
		a.statusBar.View(),
	)
}

// Run starts the monitor and returns the final job records.
func (a *App) Run() ([]*domain.Job, error) {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return a.Jobs(), nil
}

// Jobs returns the latest record of every watched job.
func (a *App) Jobs() []*domain.Job {
	return a.jobsView.Jobs()
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last result loading error.
func (a *App) Err() error {
	return a.err
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
