package bot

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func markupTexts(m *tele.ReplyMarkup) []string {
	var out []string
	for _, row := range m.InlineKeyboard {
		for _, btn := range row {
			out = append(out, btn.Text)
		}
	}
	return out
}

func TestContactsMarkupOffersInquiry(t *testing.T) {
	btns := markupTexts(contactsMarkup())
	if !contains(btns, btnInquiry) {
		t.Fatalf("contacts screen must offer an inquiry entry, got %v", btns)
	}
	if !contains(btns, btnBack) {
		t.Fatalf("contacts screen must offer a way back, got %v", btns)
	}
}
