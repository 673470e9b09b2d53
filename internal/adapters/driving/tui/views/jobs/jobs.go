// Package jobs provides the job list view, which polls each watched job
// until it reaches a terminal state.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litmapper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
)

// DefaultInterval is the polling period when none is given.
const DefaultInterval = time.Second

// View lists watched jobs.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	service  driving.JobService
	interval time.Duration

	ids     []string
	records map[string]*domain.Job
	errs    map[string]error

	spinner  spinner.Model
	selected int
	width    int
	height   int
}

// NewView creates a job list watching ids.
func NewView(
	ctx context.Context,
	s *styles.Styles,
	km *keymap.KeyMap,
	service driving.JobService,
	ids []string,
	interval time.Duration,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Running

	return &View{
		ctx:      ctx,
		styles:   s,
		keymap:   km,
		service:  service,
		interval: interval,
		ids:      ids,
		records:  make(map[string]*domain.Job, len(ids)),
		errs:     make(map[string]error),
		spinner:  sp,
		width:    80,
		height:   24,
	}
}

// Init starts the spinner and the first poll.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.poll(), v.scheduleTick())
}

// Update handles messages for the job list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.PollTick:
		if v.AllDone() {
			return v, nil
		}
		return v, tea.Batch(v.poll(), v.scheduleTick())

	case messages.JobPolled:
		if msg.Err != nil {
			v.errs[msg.ID] = msg.Err
			return v, nil
		}
		delete(v.errs, msg.ID)
		v.records[msg.ID] = msg.Job
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.ids)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Refresh):
		return v.poll()
	case key.Matches(msg, v.keymap.Open):
		return v.open()
	}
	return nil
}

// open requests the result of the selected job if it succeeded.
func (v *View) open() tea.Cmd {
	job := v.Selected()
	if job == nil || job.Status != domain.JobStatusSuccess {
		return nil
	}
	kind, hash, err := domain.ParseResultURL(job.ResultURL)
	if err != nil {
		id := job.ID
		return func() tea.Msg { return messages.JobPolled{ID: id, Err: err} }
	}
	return func() tea.Msg { return messages.ResultRequested{Kind: kind, Hash: hash} }
}

// poll fetches every job that has not finished.
func (v *View) poll() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range v.ids {
		if job := v.records[id]; job != nil && job.Done() {
			continue
		}
		cmds = append(cmds, v.fetch(id))
	}
	return tea.Batch(cmds...)
}

func (v *View) fetch(id string) tea.Cmd {
	ctx, service := v.ctx, v.service
	return func() tea.Msg {
		job, err := service.Get(ctx, id)
		return messages.JobPolled{ID: id, Job: job, Err: err}
	}
}

func (v *View) scheduleTick() tea.Cmd {
	return tea.Tick(v.interval, func(t time.Time) tea.Msg {
		return messages.PollTick{At: t}
	})
}

// View renders the job list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Jobs"))
	b.WriteString("\n")

	if len(v.ids) == 0 {
		b.WriteString(v.styles.Muted.Render("No jobs to watch."))
		return b.String()
	}

	for i, id := range v.ids {
		b.WriteString(v.renderRow(i, id))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderRow(i int, id string) string {
	cursor := "  "
	if i == v.selected {
		cursor = v.styles.Heading.Render("> ")
	}

	job := v.records[id]
	var badge, detail string
	switch {
	case job == nil:
		badge = v.spinner.View()
		detail = v.styles.Muted.Render("waiting for status")
	case !job.Done():
		badge = v.spinner.View()
		detail = v.styles.Normal.Render(job.StatusDetail)
	case job.Status == domain.JobStatusSuccess:
		badge = v.styles.Succeeded.Render("✓")
		detail = v.styles.Muted.Render(job.ResultURL)
	default:
		badge = v.styles.Failed.Render("✗")
		detail = v.styles.Error.Render(job.StatusDetail)
	}

	row := fmt.Sprintf("%s%s %s  %s", cursor, badge, id, detail)
	if err, ok := v.errs[id]; ok {
		row += "  " + v.styles.Error.Render(err.Error())
	}
	return row
}

// AllDone reports whether every watched job reached a terminal state.
func (v *View) AllDone() bool {
	for _, id := range v.ids {
		if job := v.records[id]; job == nil || !job.Done() {
			return false
		}
	}
	return true
}

// Jobs returns the latest record of each job in watch order. Unfetched jobs are nil.
func (v *View) Jobs() []*domain.Job {
	out := make([]*domain.Job, len(v.ids))
	for i, id := range v.ids {
		out[i] = v.records[id]
	}
	return out
}

// Selected returns the highlighted job, or nil if it has not been fetched.
func (v *View) Selected() *domain.Job {
	if len(v.ids) == 0 {
		return nil
	}
	return v.records[v.ids[v.selected]]
}

// LastError returns the most recent poll error, if any.
func (v *View) LastError() error {
	for _, id := range v.ids {
		if err, ok := v.errs[id]; ok {
			return err
		}
	}
	return nil
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}
