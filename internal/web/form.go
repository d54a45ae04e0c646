package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mixelka/emaildraft/pkg/models"
)

const attachmentsField = "attachments"

// errUploadTooLarge is returned when the request body exceeds the upload limit
var errUploadTooLarge = errors.New("upload exceeds the size limit")

// formValues are the raw field values echoed back into the form
type formValues struct {
	SenderName        string
	SenderPosition    string
	SenderCompany     string
	SenderEmail       string
	RecipientName     string
	RecipientPosition string
	RecipientCompany  string
	RecipientEmail    string
	UseAttachment     bool
	Context           string
	ExtraDetail       string
	Tone              string
	Length            string
}

func defaultFormValues() formValues {
	return formValues{
		Tone:   string(models.ToneFormal),
		Length: string(models.LengthShort),
	}
}

func readFormValues(c *gin.Context) formValues {
	return formValues{
		SenderName:        c.PostForm("sender_name"),
		SenderPosition:    c.PostForm("sender_position"),
		SenderCompany:     c.PostForm("sender_company"),
		SenderEmail:       c.PostForm("sender_email"),
		RecipientName:     c.PostForm("recipient_name"),
		RecipientPosition: c.PostForm("recipient_position"),
		RecipientCompany:  c.PostForm("recipient_company"),
		RecipientEmail:    c.PostForm("recipient_email"),
		UseAttachment:     checked(c.PostForm("use_attachment")),
		Context:           c.PostForm("context"),
		ExtraDetail:       c.PostForm("extra_detail"),
		Tone:              c.PostForm("tone"),
		Length:            c.PostForm("length"),
	}
}

func (v formValues) request() *models.EmailRequest {
	return &models.EmailRequest{
		SenderName:        strings.TrimSpace(v.SenderName),
		SenderPosition:    strings.TrimSpace(v.SenderPosition),
		SenderCompany:     strings.TrimSpace(v.SenderCompany),
		SenderAddress:     strings.TrimSpace(v.SenderEmail),
		RecipientName:     strings.TrimSpace(v.RecipientName),
		RecipientPosition: strings.TrimSpace(v.RecipientPosition),
		RecipientCompany:  strings.TrimSpace(v.RecipientCompany),
		RecipientAddress:  strings.TrimSpace(v.RecipientEmail),
		Context:           strings.TrimSpace(v.Context),
		ExtraDetail:       strings.TrimSpace(v.ExtraDetail),
		Tone:              models.ParseTone(v.Tone),
		Length:            models.ParseLength(v.Length),
		UseAttachments:    v.UseAttachment,
	}
}

// parseGenerateRequest reads the submitted fields and uploads.
// Uploaded payloads are read into memory once.
func (h *handler) parseGenerateRequest(c *gin.Context) (formValues, *models.EmailRequest, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return formValues{}, nil, errUploadTooLarge
		}
		return formValues{}, nil, fmt.Errorf("failed to parse form: %w", err)
	}

	values := readFormValues(c)
	req := values.request()

	if form != nil {
		for _, fh := range form.File[attachmentsField] {
			if fh.Filename == "" {
				continue
			}
			file, err := readUpload(fh)
			if err != nil {
				return values, nil, err
			}
			req.Attachments = append(req.Attachments, file)
		}
	}

	return values, req, nil
}

func readUpload(fh *multipart.FileHeader) (*models.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
	}
	return models.NewUploadedFile(fh.Filename, fh.Header.Get("Content-Type"), payload), nil
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
