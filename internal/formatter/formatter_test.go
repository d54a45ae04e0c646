package formatter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mixelka/emaildraft/internal/links"
	"github.com/mixelka/emaildraft/pkg/models"
)

func TestFormatEmailEscapesHTML(t *testing.T) {
	f := NewTelegramFormatter()

	got := f.FormatEmail(&models.GeneratedEmail{Subject: "Q&A", Body: "Use <b> tags & more"})
	want := "<b>Subject:</b> Q&amp;A\n\nUse &lt;b&gt; tags &amp; more"
	if got != want {
		t.Errorf("FormatEmail() = %q, want %q", got, want)
	}
}

func TestFormatEmailTruncatesLongBody(t *testing.T) {
	f := NewTelegramFormatter()

	body := strings.Repeat("ж", 5000)
	got := f.FormatEmail(&models.GeneratedEmail{Subject: "Intro", Body: body})

	if utf8.RuneCountInString(got) > 4096 {
		t.Errorf("message has %d runes, exceeds Telegram limit", utf8.RuneCountInString(got))
	}
	if !strings.Contains(got, "truncated") {
		t.Error("expected truncation notice")
	}
}

func TestFormatMailto(t *testing.T) {
	f := NewTelegramFormatter()

	short := links.Build("Bob", "Intro", "Hi Bob & co")
	got := f.FormatMailto(&short)
	if !strings.HasPrefix(got, `<a href="mailto:Bob?subject=Intro&amp;body=`) {
		t.Errorf("FormatMailto() = %q", got)
	}

	long := links.Build("Bob", "Intro", strings.Repeat("x y ", 2000))
	if got := f.FormatMailto(&long); strings.Contains(got, "href") {
		t.Errorf("long mailto must not be rendered as a link: %q", got[:80])
	}
}

func TestFormatWarningAndError(t *testing.T) {
	f := NewTelegramFormatter()

	if got := f.FormatWarning("please fill in all required fields: sender name"); !strings.HasSuffix(got, "sender name") {
		t.Errorf("FormatWarning() = %q", got)
	}
	if got := f.FormatError(`Could not read "a<b>.pdf"`); !strings.Contains(got, "a&lt;b&gt;.pdf") {
		t.Errorf("FormatError() = %q", got)
	}
}

func TestBuildLinksKeyboard(t *testing.T) {
	l := links.Build("Bob", "Intro", "Hello")

	kb := BuildLinksKeyboard(&l)
	if kb == nil || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 1 {
		t.Fatalf("unexpected keyboard: %+v", kb)
	}
	if kb.InlineKeyboard[0][0].URL != l.Gmail {
		t.Errorf("button URL = %q, want %q", kb.InlineKeyboard[0][0].URL, l.Gmail)
	}

	if BuildLinksKeyboard(nil) != nil {
		t.Error("expected nil keyboard without links")
	}
}
