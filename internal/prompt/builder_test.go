package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mixelka/emaildraft/pkg/models"
)

func baseRequest() *models.EmailRequest {
	return &models.EmailRequest{
		SenderName:    "Alice",
		RecipientName: "Bob",
		Context:       "Intro",
		Tone:          models.ToneFormal,
		Length:        models.LengthShort,
	}
}

func TestBuildCanonicalContainsFields(t *testing.T) {
	req := baseRequest()
	req.SenderPosition = "CTO"
	req.SenderCompany = "Acme"
	req.RecipientCompany = "Globex"
	req.ExtraDetail = "mention the demo on Friday"

	got := NewBuilder(StyleCanonical).Build(req, nil)

	for _, want := range []string{
		"Alice (CTO, Acme)",
		"Bob (Globex)",
		"Context: Intro",
		"Formal tone",
		"Make it Short",
		"include: mention the demo on Friday",
		"as if you are the sender",
		"no repeated sentences",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Attachments:") {
		t.Errorf("did not expect attachment line without attachments")
	}
}

func TestBuildOmitsEmptyIdentityDetails(t *testing.T) {
	got := NewBuilder(StyleCanonical).Build(baseRequest(), nil)
	if !strings.Contains(got, "from Alice to Bob with") {
		t.Fatalf("expected bare names, got:\n%s", got)
	}
}

func TestBuildListsAttachmentsInUploadOrder(t *testing.T) {
	req := baseRequest()
	req.Attachments = []*models.UploadedFile{
		models.NewUploadedFile("b.pdf", models.ContentTypePDF, nil),
		models.NewUploadedFile("a.txt", models.ContentTypeText, nil),
	}

	got := NewBuilder(StyleCanonical).Build(req, nil)
	if !strings.HasSuffix(got, "\nAttachments: b.pdf, a.txt") {
		t.Fatalf("expected trailing attachment list, got:\n%s", got)
	}
}

func TestAttachmentModeOverridesContext(t *testing.T) {
	req := baseRequest()
	req.UseAttachments = true
	req.Context = "ignored context"
	req.ExtraDetail = "ignored detail"
	req.Attachments = []*models.UploadedFile{models.NewUploadedFile("note.txt", models.ContentTypeText, nil)}
	text := "Hello world"

	got := NewBuilder(StyleCanonical).Build(req, &text)

	if !strings.Contains(got, "Context: "+AttachmentContext) {
		t.Errorf("expected attachment context, got:\n%s", got)
	}
	if !strings.Contains(got, AttachmentSummaryPrefix+"Hello world"+Ellipsis) {
		t.Errorf("expected summary of attachment, got:\n%s", got)
	}
	if strings.Contains(got, "ignored") {
		t.Errorf("typed context leaked into attachment prompt:\n%s", got)
	}
}

func TestSummarizeTruncatesAt500Characters(t *testing.T) {
	long := strings.Repeat("abcdefghij", 60) + "TAIL"
	fields := EffectiveFields(&models.EmailRequest{UseAttachments: true}, &long)

	want := AttachmentSummaryPrefix + long[:SummaryLimit] + Ellipsis
	if fields.ExtraDetail != want {
		t.Fatalf("extra detail mismatch:\n got %q\nwant %q", fields.ExtraDetail, want)
	}
}

func TestSummarizeCountsCharactersNotBytes(t *testing.T) {
	long := strings.Repeat("é", 600)
	summary := Summarize(long)

	body := strings.TrimSuffix(strings.TrimPrefix(summary, AttachmentSummaryPrefix), Ellipsis)
	if n := utf8.RuneCountInString(body); n != SummaryLimit {
		t.Fatalf("summary holds %d characters, want %d", n, SummaryLimit)
	}
	if !utf8.ValidString(summary) {
		t.Fatalf("summary is not valid UTF-8")
	}
}

func TestSummarizeShortTextKeepsEverything(t *testing.T) {
	if got := Summarize("short"); got != AttachmentSummaryPrefix+"short"+Ellipsis {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestJoinAttachmentText(t *testing.T) {
	if got := JoinAttachmentText([]string{"one", "two"}); got != "one\n\ntwo" {
		t.Fatalf("JoinAttachmentText = %q", got)
	}
}

func TestLegacyStyle(t *testing.T) {
	got := NewBuilder(StyleLegacy).Build(baseRequest(), nil)
	for _, want := range []string{"Subject: Intro", "in a Formal way", "Make it Short length"} {
		if !strings.Contains(got, want) {
			t.Errorf("legacy prompt missing %q:\n%s", want, got)
		}
	}
}

func TestUnknownStyleFallsBackToCanonical(t *testing.T) {
	if got := NewBuilder(Style("fancy")).Style(); got != StyleCanonical {
		t.Fatalf("Style = %q, want canonical", got)
	}
}
