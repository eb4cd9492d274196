package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/vlanimate/pkg/elaborate"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/timeline"
)

func testTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	s, err := spec.Parse([]byte(`{"mark": "point", "encoding": {"time": {"field": "year", "scale": {"type": "band", "domain": [2000, 2001, 2002]}}}}`))
	if err != nil {
		t.Fatal(err)
	}
	u := elaborate.Elaborate(s).(*spec.Unit)
	tl, err := timeline.New(u.Time(), spec.Selections(u.Params)[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	return tl
}

func update(t *testing.T, m PlayModel, msg tea.Msg) (PlayModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(PlayModel), cmd
}

func TestPlayModelTicks(t *testing.T) {
	m := NewPlayModel("root", testTimeline(t), 250*time.Millisecond)

	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick did not schedule the next tick")
	}
	m, _ = update(t, m, tickMsg(time.Now()))
	if got := m.Player.Frame().Clock; got != 500 {
		t.Errorf("clock = %v, want 500", got)
	}
	if got := m.Player.Frame().Index; got != 1 {
		t.Errorf("index = %v, want 1", got)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Paused {
		t.Fatal("space did not pause")
	}
	m, _ = update(t, m, tickMsg(time.Now()))
	if got := m.Player.Frame().Clock; got != 500 {
		t.Errorf("clock advanced while paused: %v", got)
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view does not show the paused state")
	}
}

func TestPlayModelSeek(t *testing.T) {
	m := NewPlayModel("root", testTimeline(t), time.Second/60)

	tests := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, 1},
		{tea.KeyMsg{Type: tea.KeyRight}, 2},
		{tea.KeyMsg{Type: tea.KeyRight}, 0},
		{tea.KeyMsg{Type: tea.KeyLeft}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}}, 0},
	}
	for _, tt := range tests {
		m, _ = update(t, m, tt.key)
		if got := m.Player.Frame().Index; got != tt.want {
			t.Errorf("after %s index = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestPlayModelQuit(t *testing.T) {
	m := NewPlayModel("root", testTimeline(t), time.Second/60)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		v, total float64
		filled   int
	}{
		{0, 1000, 0},
		{500, 1000, 5},
		{1000, 1000, 10},
		{2000, 1000, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		bar := progressBar(tt.v, tt.total, 10)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("progressBar(%v, %v) filled %d cells, want %d", tt.v, tt.total, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("progressBar(%v, %v) is %d cells wide", tt.v, tt.total, got)
		}
	}
}
