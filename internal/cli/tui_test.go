package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/uxlens/journeyflow/pkg/journey"
)

func pickerJourneys() []journey.Journey {
	return []journey.Journey{
		{Name: "U1", Steps: []journey.Step{{ScreenName: "Home"}, {ScreenName: "Cart"}}},
		{Name: "U2", Steps: []journey.Step{{ScreenName: "Home"}, {ScreenName: "Search"}, {ScreenName: "Home"}}},
		{Name: "U3", Steps: nil},
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJourneyListModel_Navigation(t *testing.T) {
	m := NewJourneyListModel(pickerJourneys())

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(JourneyListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(JourneyListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up, want 0", m.Cursor)
	}

	// Up at the top stays put
	updated, _ = m.Update(keyMsg("k"))
	m = updated.(JourneyListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up at top, want 0", m.Cursor)
	}
}

func TestJourneyListModel_Select(t *testing.T) {
	m := NewJourneyListModel(pickerJourneys())

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(JourneyListModel)
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(JourneyListModel)

	if m.Selected == nil || m.Selected.Name != "U2" {
		t.Fatalf("Selected = %+v, want U2", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestJourneyListModel_Quit(t *testing.T) {
	m := NewJourneyListModel(pickerJourneys())
	updated, cmd := m.Update(keyMsg("q"))
	m = updated.(JourneyListModel)

	if m.Selected != nil {
		t.Error("quit should not select a journey")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestJourneyListModel_View(t *testing.T) {
	m := NewJourneyListModel(pickerJourneys())
	view := m.View()

	for _, want := range []string{"Select Journey", "U1", "U2", "Home"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestJourneyPreview(t *testing.T) {
	j := journey.Journey{Steps: []journey.Step{
		{ScreenName: "A"}, {ScreenName: "B"}, {ScreenName: "C"},
	}}
	if got := journeyPreview(j, 2); !strings.HasPrefix(got, "A → B") || !strings.HasSuffix(got, "…") {
		t.Errorf("journeyPreview = %q", got)
	}
	if got := journeyPreview(journey.Journey{}, 4); got != "—" {
		t.Errorf("empty journey preview = %q", got)
	}
}

func TestDistinctScreens(t *testing.T) {
	j := journey.Journey{Steps: []journey.Step{
		{ScreenName: "Home"}, {ScreenName: "Cart"}, {ScreenName: "Home"},
	}}
	if got := distinctScreens(j); got != 2 {
		t.Errorf("distinctScreens = %d, want 2", got)
	}
}
