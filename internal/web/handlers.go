package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mixelka/emaildraft/internal/composer"
	"github.com/mixelka/emaildraft/internal/database"
	"github.com/mixelka/emaildraft/internal/drafts"
	"github.com/mixelka/emaildraft/pkg/models"
)

type handler struct {
	generator      Generator
	drafts         DraftSaver
	history        HistoryStore
	maxUploadBytes int64
	logger         *slog.Logger
}

type pageData struct {
	Form        formValues
	Tones       []models.Tone
	Lengths     []models.Length
	Email       *models.GeneratedEmail
	Links       *models.MailLinks
	Warning     string
	Error       string
	IMAPEnabled bool
	Mailbox     string
}

func (h *handler) page(values formValues) pageData {
	data := pageData{
		Form:        values,
		Tones:       models.Tones,
		Lengths:     models.Lengths,
		IMAPEnabled: h.drafts != nil,
	}
	if h.drafts != nil {
		data.Mailbox = h.drafts.Mailbox()
	}
	return data
}

func (h *handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.page(defaultFormValues()))
}

func (h *handler) generateForm(c *gin.Context) {
	values, req, err := h.parseGenerateRequest(c)
	if err != nil {
		data := h.page(values)
		data.Error = err.Error()
		c.HTML(uploadStatus(err), "index.html", data)
		return
	}

	out := h.generator.Generate(c.Request.Context(), req)

	data := h.page(values)
	switch {
	case out.Succeeded():
		data.Email = out.Email
		data.Links = out.Links
	case out.IsWarning():
		data.Warning = out.UserMessage()
	default:
		data.Error = out.UserMessage()
	}
	c.HTML(outcomeStatus(out), "index.html", data)
}

type errorPayload struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

type generateResponse struct {
	ID      string            `json:"id,omitempty"`
	State   composer.State    `json:"state"`
	Subject string            `json:"subject,omitempty"`
	Body    string            `json:"body,omitempty"`
	Links   *models.MailLinks `json:"links,omitempty"`
	Error   *errorPayload     `json:"error,omitempty"`
}

func (h *handler) generateAPI(c *gin.Context) {
	_, req, err := h.parseGenerateRequest(c)
	if err != nil {
		c.JSON(uploadStatus(err), generateResponse{
			State: composer.StateFailed,
			Error: &errorPayload{Kind: "request", Message: err.Error()},
		})
		return
	}

	out := h.generator.Generate(c.Request.Context(), req)

	resp := generateResponse{ID: out.ID, State: out.State}
	if out.Succeeded() {
		resp.Subject = out.Email.Subject
		resp.Body = out.Email.Body
		resp.Links = out.Links
	} else {
		resp.Error = &errorPayload{Kind: out.ErrorKind(), Message: out.UserMessage()}
		var validationErr *composer.ValidationError
		if errors.As(out.Err, &validationErr) {
			resp.Error.Missing = validationErr.Missing
		}
	}
	c.JSON(outcomeStatus(out), resp)
}

// draftFromForm reads the hidden draft fields posted from the preview
func draftFromForm(c *gin.Context) (drafts.Draft, error) {
	d := drafts.Draft{
		FromName:    strings.TrimSpace(c.PostForm("sender_name")),
		FromAddress: strings.TrimSpace(c.PostForm("sender_email")),
		ToName:      strings.TrimSpace(c.PostForm("recipient_name")),
		ToAddress:   strings.TrimSpace(c.PostForm("recipient_email")),
		Subject:     strings.TrimSpace(c.PostForm("subject")),
		Body:        c.PostForm("body"),
	}
	if strings.TrimSpace(d.Body) == "" {
		return d, errors.New("body is required")
	}
	return d, nil
}

func (h *handler) draftEML(c *gin.Context) {
	d, err := draftFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := drafts.BuildEML(d)
	if err != nil {
		h.logger.Error("failed to build draft", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename()))
	c.Data(http.StatusOK, "message/rfc822", raw)
}

func (h *handler) draftIMAP(c *gin.Context) {
	if h.drafts == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": drafts.ErrIMAPDisabled.Error()})
		return
	}

	d, err := draftFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, err := drafts.BuildEML(d)
	if err != nil {
		h.logger.Error("failed to build draft", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := h.drafts.SaveDraft(c.Request.Context(), raw); err != nil {
		if errors.Is(err, drafts.ErrIMAPDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to save draft", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved", "mailbox": h.drafts.Mailbox()})
}

func (h *handler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation history is disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	records, err := h.history.ListGenerations(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list generations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if records == nil {
		records = []*models.GenerationRecord{}
	}

	counts, err := h.history.CountGenerationsByState(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to count generations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": records, "counts": counts})
}

func (h *handler) getHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation history is disabled"})
		return
	}

	record, err := h.history.GetGeneration(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func outcomeStatus(out *composer.Outcome) int {
	switch out.ErrorKind() {
	case "":
		return http.StatusOK
	case composer.KindValidation:
		return http.StatusBadRequest
	case composer.KindExtraction:
		return http.StatusUnprocessableEntity
	case composer.KindRemoteGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func uploadStatus(err error) int {
	if errors.Is(err, errUploadTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
