package formatter

import (
	"github.com/go-telegram/bot/models"

	appmodels "github.com/mixelka/emaildraft/pkg/models"
)

// BuildLinksKeyboard creates an inline keyboard with the Gmail compose link.
// Telegram URL buttons only accept http(s) links, so mailto stays in the message text.
func BuildLinksKeyboard(links *appmodels.MailLinks) *models.InlineKeyboardMarkup {
	if links == nil || links.Gmail == "" {
		return nil
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Open with Gmail", URL: links.Gmail},
			},
		},
	}
}
