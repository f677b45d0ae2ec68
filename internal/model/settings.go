package model

import (
	"context"
	"errors"
)

// AppSettings holds the messaging gateway credentials and the switch
// that enables outbound notifications. A missing settings document or
// a disabled flag turns all sending into a soft no-op.
type AppSettings struct {
	WhatsAppInstanceID string `bson:"whatsappInstanceId,omitempty"`
	WhatsAppToken      string `bson:"whatsappToken,omitempty"`
	NotifyOnMention    bool   `bson:"notifyOnMention,omitempty"`
}

func (s *AppSettings) SendingEnabled() bool {
	return s != nil && s.NotifyOnMention && s.WhatsAppInstanceID != "" && s.WhatsAppToken != ""
}

var ErrSettingsNotFound = errors.New("app settings not found")

type SettingsRepository interface {
	FetchSettings(ctx context.Context) (*AppSettings, error)
}
