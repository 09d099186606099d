package bot

import (
	"testing"

	"github.com/a7motors/dealerbot/core/telegram/dialog"

	"github.com/a7motors/dealerbot/catalog"
	"github.com/a7motors/dealerbot/notify"
)

type fakeDispatcher struct {
	profiles  []notify.Profile
	inquiries []notify.Inquiry
}

func (f *fakeDispatcher) Dispatch(p notify.Profile, inq notify.Inquiry) bool {
	f.profiles = append(f.profiles, p)
	f.inquiries = append(f.inquiries, inq)
	return true
}

func TestInquiryFlowDispatchesDraft(t *testing.T) {
	a := newTestApp(t)
	disp := &fakeDispatcher{}
	a.notifier = disp

	const userID = int64(77)
	car := catalog.Car{ID: 3, Brand: "Audi", Model: "A4", Year: 2018, Price: 25000}
	a.dialogs.Start(userID, "ivan", stateInquiryName)
	a.withSession(userID, func(sess *dialog.Session) {
		sess.SetTemp(tmpInquiryFirst, "Иван")
		sess.SetTemp(tmpInquiryCar, car)
	})

	feedText(a, userID, "Иван")
	feedText(a, userID, "+375291234567")
	replies := feedText(a, userID, "Хочу тест-драйв")

	if len(disp.inquiries) != 1 {
		t.Fatalf("dispatch count = %d", len(disp.inquiries))
	}
	inq := disp.inquiries[0]
	if inq.Name != "Иван" || inq.Phone != "+375291234567" || inq.Preferences != "Хочу тест-драйв" {
		t.Fatalf("inquiry fields wrong: %+v", inq)
	}
	if inq.Ref == "" {
		t.Fatal("inquiry ref must be assigned")
	}
	if inq.Car == nil || inq.Car.ID != 3 || inq.Car.Brand != "Audi" {
		t.Fatalf("car snapshot missing or wrong: %+v", inq.Car)
	}
	if disp.profiles[0].UserID != userID || disp.profiles[0].Username != "ivan" {
		t.Fatalf("sender profile wrong: %+v", disp.profiles[0])
	}
	if disp.profiles[0].FirstName != "Иван" {
		t.Fatalf("sender first name not carried: %+v", disp.profiles[0])
	}
	if len(replies) != 1 || replies[0].Text != textInquiryDone {
		t.Fatalf("expected confirmation, got %+v", replies)
	}
	if a.dialogs.InProgress(userID) {
		t.Fatal("finished inquiry should clear the session")
	}
}

func TestInquiryEmptyNameReprompts(t *testing.T) {
	a := newTestApp(t)
	a.dialogs.Start(5, "u", stateInquiryName)

	replies := feedText(a, 5, "   ")
	if got := a.dialogs.State(5); got != stateInquiryName {
		t.Fatalf("state advanced on blank name: %s", got)
	}
	if len(replies) != 1 || replies[0].Text != textNameEmpty {
		t.Fatalf("expected name re-prompt, got %+v", replies)
	}
}

func TestInquirySkipPreferences(t *testing.T) {
	a := newTestApp(t)
	disp := &fakeDispatcher{}
	a.notifier = disp

	a.dialogs.Start(8, "u", stateInquiryPrefs)
	a.withSession(8, func(sess *dialog.Session) {
		sess.SetTemp(tmpInquiryName, "Оля")
		sess.SetTemp(tmpInquiryPhone, "+375330000000")
	})

	feedChoice(a, 8, "")

	if len(disp.inquiries) != 1 {
		t.Fatalf("dispatch count = %d", len(disp.inquiries))
	}
	if disp.inquiries[0].Preferences != "" {
		t.Fatalf("skipped preferences should be empty, got %q", disp.inquiries[0].Preferences)
	}
	if disp.inquiries[0].Car != nil {
		t.Fatal("general inquiry carries no car snapshot")
	}
}

func TestInquiryConfirmedWithoutDispatcher(t *testing.T) {
	a := newTestApp(t)
	// No notifier wired, as before the transport starts.
	a.dialogs.Start(9, "u", stateInquiryPrefs)
	a.withSession(9, func(sess *dialog.Session) {
		sess.SetTemp(tmpInquiryName, "n")
		sess.SetTemp(tmpInquiryPhone, "p")
	})

	replies := feedText(a, 9, "x")
	if len(replies) != 1 || replies[0].Text != textInquiryDone {
		t.Fatalf("customer confirmation must not depend on delivery, got %+v", replies)
	}
}
