package dialog

import "testing"

const (
	stateAskName  State = "test.ask_name"
	stateAskPhone State = "test.ask_phone"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	m.RegisterStep(stateAskName, func(s *Session, in Input) Step {
		if in.Kind != InputText || in.Text == "" {
			return Step{
				Replies: []Reply{{Text: "name please"}},
				Next:    stateAskName,
			}
		}
		s.SetTemp("name", in.Text)
		return Step{
			Replies: []Reply{{Text: "phone please"}},
			Next:    stateAskPhone,
		}
	})
	m.RegisterStep(stateAskPhone, func(s *Session, in Input) Step {
		if in.Kind != InputText {
			return Step{
				Replies: []Reply{{Text: "phone please"}},
				Next:    stateAskPhone,
			}
		}
		return Step{
			Replies: []Reply{{Text: "thanks"}},
			Done:    true,
		}
	})
	return m
}

func TestManagerAdvances(t *testing.T) {
	m := newTestManager(t)
	m.Start(7, "buyer", stateAskName)

	if !m.InProgress(7) {
		t.Fatal("expected conversation in progress")
	}

	replies := m.Feed(7, Input{Kind: InputText, Text: "Ivan"})
	if len(replies) != 1 || replies[0].Text != "phone please" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
	if got := m.State(7); got != stateAskPhone {
		t.Fatalf("state = %s, expected %s", got, stateAskPhone)
	}
}

func TestManagerMismatchedInputRetries(t *testing.T) {
	m := newTestManager(t)
	m.Start(7, "buyer", stateAskName)

	replies := m.Feed(7, Input{Kind: InputPhoto})
	if len(replies) != 1 || replies[0].Text != "name please" {
		t.Fatalf("expected re-prompt, got %+v", replies)
	}
	if got := m.State(7); got != stateAskName {
		t.Fatalf("state advanced on mismatched input: %s", got)
	}
}

func TestManagerDoneClearsSession(t *testing.T) {
	m := newTestManager(t)
	m.Start(7, "buyer", stateAskPhone)

	m.Feed(7, Input{Kind: InputText, Text: "+375291234567"})
	if m.InProgress(7) {
		t.Fatal("expected session cleared after done")
	}
	if got := m.State(7); got != StateIdle {
		t.Fatalf("state = %s, expected idle", got)
	}
}

func TestManagerCancel(t *testing.T) {
	m := newTestManager(t)
	m.Start(7, "buyer", stateAskName)

	if !m.Cancel(7) {
		t.Fatal("expected cancel to report active conversation")
	}
	if m.Cancel(7) {
		t.Fatal("expected second cancel to be a no-op")
	}
	if replies := m.Feed(7, Input{Kind: InputText, Text: "Ivan"}); replies != nil {
		t.Fatalf("expected no replies after cancel, got %+v", replies)
	}
}

func TestManagerStartReplacesSession(t *testing.T) {
	m := newTestManager(t)
	m.Start(7, "buyer", stateAskPhone)
	m.Start(7, "buyer", stateAskName)

	if got := m.State(7); got != stateAskName {
		t.Fatalf("state = %s, expected %s", got, stateAskName)
	}
}

func TestManagerIsolatesUsers(t *testing.T) {
	m := newTestManager(t)
	m.Start(1, "first", stateAskName)
	m.Start(2, "second", stateAskPhone)

	m.Feed(1, Input{Kind: InputText, Text: "Ivan"})
	if got := m.State(2); got != stateAskPhone {
		t.Fatalf("user 2 state changed by user 1 input: %s", got)
	}
}
