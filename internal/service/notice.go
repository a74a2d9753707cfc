package service

import (
	"renthunt/internal/domain"
	"renthunt/internal/keyboard"
	"renthunt/internal/locale"
	"renthunt/internal/messenger"
)

// CallbackStart re-enters the email step
const CallbackStart = "start"

// Links are the external pages offered to customers without access
type Links struct {
	Tariffs string
	Support string
}

// RevokedNotice builds the message sent when a tier grants no access.
// Expired customers also get a support link.
func RevokedNotice(bundle *locale.Bundle, loc string, tier domain.Tier, links Links) messenger.Message {
	msgs := bundle.Messages(loc)

	text := msgs.NotFound
	grid := keyboard.Grid{
		{{Text: msgs.GoToWebsite, URL: links.Tariffs}},
	}
	if tier == domain.TierExpired {
		text = msgs.Expired
		grid = append(grid, []keyboard.Button{{Text: msgs.WriteToSupport, URL: links.Support}})
	}
	grid = append(grid, []keyboard.Button{{Text: msgs.WriteAnotherEmail, Data: CallbackStart}})

	return messenger.Message{Text: text, Keyboard: grid}
}
