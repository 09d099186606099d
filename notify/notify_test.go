package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/a7motors/dealerbot/catalog"
)

type fakeSender struct {
	failFor map[int64]error
	sent    map[int64]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		failFor: make(map[int64]error),
		sent:    make(map[int64]string),
	}
}

func (f *fakeSender) SendToUser(userID int64, text string) error {
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	f.sent[userID] = text
	return nil
}

func TestDispatchDeliversToAllAdmins(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(sender, []int64{10, 20, 30})

	ok := d.Dispatch(Profile{UserID: 7, FirstName: "Иван"}, Inquiry{
		Name:  "Иван",
		Phone: "+375291234567",
	})
	if !ok {
		t.Fatal("expected delivery success")
	}
	if len(sender.sent) != 3 {
		t.Fatalf("delivered to %d admins, expected 3", len(sender.sent))
	}
}

func TestDispatchToleratesPartialFailure(t *testing.T) {
	sender := newFakeSender()
	sender.failFor[20] = errors.New("bot blocked")
	d := NewDispatcher(sender, []int64{10, 20, 30})

	ok := d.Dispatch(Profile{UserID: 7}, Inquiry{Name: "Анна", Phone: "+375447654321"})
	if !ok {
		t.Fatal("one failed delivery must not fail the dispatch")
	}
	if _, got := sender.sent[10]; !got {
		t.Fatal("admin 10 should have received the message")
	}
	if _, got := sender.sent[30]; !got {
		t.Fatal("admin 30 should have received the message")
	}
	if _, got := sender.sent[20]; got {
		t.Fatal("admin 20 delivery should have failed")
	}
}

func TestDispatchAllFailedReportsFalse(t *testing.T) {
	sender := newFakeSender()
	sender.failFor[10] = errors.New("blocked")
	sender.failFor[20] = errors.New("invalid id")
	d := NewDispatcher(sender, []int64{10, 20})

	if d.Dispatch(Profile{UserID: 7}, Inquiry{Name: "Пётр", Phone: "+375251112233"}) {
		t.Fatal("expected false when no admin received the message")
	}
}

func TestDispatchAssignsRef(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(sender, []int64{10})

	d.Dispatch(Profile{UserID: 7}, Inquiry{Name: "Ольга", Phone: "+375291112233"})
	text := sender.sent[10]
	if !strings.Contains(text, "заявка №") {
		t.Fatalf("missing reference line in %q", text)
	}
}

func TestFormatIncludesCarSnapshot(t *testing.T) {
	car := &catalog.Car{ID: 4, Brand: "BMW", Model: "X5", Year: 2021, Price: 52000}
	text := Format(
		Profile{UserID: 7, FirstName: "Иван", Username: "ivan"},
		Inquiry{Ref: "ABCD1234", Name: "Иван", Phone: "+375291234567", Preferences: "Только дизель", Car: car},
	)
	for _, want := range []string{"ABCD1234", "Иван", "+375291234567", "Только дизель", "BMW X5", "52000", "@ivan"} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted message missing %q:\n%s", want, text)
		}
	}
}

func TestFormatSenderLine(t *testing.T) {
	text := Format(
		Profile{UserID: 42, FirstName: "Пётр", Username: "petr"},
		Inquiry{Ref: "ABCD1234", Name: "Иван", Phone: "+375291234567"},
	)
	for _, want := range []string{"Пётр", "@petr", "(id 42)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("sender line missing %q:\n%s", want, text)
		}
	}
}

func TestNewRefShape(t *testing.T) {
	ref := NewRef()
	if len(ref) != 8 {
		t.Fatalf("ref length = %d, expected 8", len(ref))
	}
	if ref != strings.ToUpper(ref) {
		t.Fatalf("ref not uppercase: %s", ref)
	}
}
