// Package tui renders a live indexing-progress view on top of the same
// driving.IndexService contract the CLI's "index" subcommand drives
// directly, following the progress-model pattern go-mizu-mizu's finewiki
// blueprint uses for its download command.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/idxbeast/internal/core/ports/driving"
	"github.com/custodia-labs/idxbeast/internal/status"
)

type tickMsg time.Time

type doneMsg struct {
	stats driving.IndexStats
	err   error
}

type progressModel struct {
	st       *status.Status
	bar      progress.Model
	snapshot []status.Snapshot
	stats    driving.IndexStats
	done     bool
	err      error
}

func newProgressModel(st *status.Status) progressModel {
	return progressModel{
		st: st,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

func (m progressModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.snapshot = m.st.Snapshot()
		return m, tickCmd()

	case doneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		m.snapshot = m.st.Snapshot()
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.err = fmt.Errorf("indexing interrupted")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	if m.done {
		if m.err != nil {
			fmt.Fprintf(&b, "indexing failed: %v\n", m.err)
		} else {
			fmt.Fprintf(&b, "indexing complete: %d new, %d updated, %d unchanged, %d errors\n",
				m.stats.New, m.stats.Outdated, m.stats.Uptodate, m.stats.Errors)
		}
		return b.String()
	}

	b.WriteString(m.bar.View())
	b.WriteString("\n")

	stages := make([]status.Snapshot, len(m.snapshot))
	copy(stages, m.snapshot)
	sort.Slice(stages, func(i, j int) bool { return stages[i].Stage < stages[j].Stage })

	for _, s := range stages {
		fields := make([]string, 0, len(s.Ints)+len(s.Strings))
		for k, v := range s.Ints {
			fields = append(fields, fmt.Sprintf("%s=%d", k, v))
		}
		for k, v := range s.Strings {
			fields = append(fields, fmt.Sprintf("%s=%s", k, v))
		}
		sort.Strings(fields)
		fmt.Fprintf(&b, "  %-10s %s\n", s.Stage, strings.Join(fields, " "))
	}

	b.WriteString("  (press q to cancel)\n")
	return b.String()
}

// RunIndexProgress drives svc.Run in the background and renders its live
// status through a bubbletea program until the run completes or the user
// cancels it.
func RunIndexProgress(ctx context.Context, st *status.Status, svc driving.IndexService) (driving.IndexStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(st))

	go func() {
		stats, err := svc.Run(ctx)
		p.Send(doneMsg{stats: stats, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return driving.IndexStats{}, err
	}

	fm := finalModel.(progressModel)
	if fm.err != nil {
		return fm.stats, fm.err
	}
	return fm.stats, nil
}
