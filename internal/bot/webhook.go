package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxBodyBytes = 1 << 20
)

// WebhookHandler receives Telegram updates over HTTP.
// It always answers 200 {"ok":true} so Telegram never redelivers an update.
type WebhookHandler struct {
	updates UpdateHandler
	secret  string
	log     *zap.Logger
}

func NewWebhookHandler(updates UpdateHandler, secret string, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{updates: updates, secret: secret, log: log.Named("webhook")}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer writeOK(w)

	if h.secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.log.Warn("webhook secret mismatch", zap.String("remote", r.RemoteAddr))
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("read update body", zap.Error(err))
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.log.Debug("malformed update", zap.Error(err), zap.Int("bytes", len(body)))
		return
	}

	// Fan-out may outlive the client connection; it runs to completion.
	h.updates.HandleUpdate(context.WithoutCancel(r.Context()), update)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// SetWebhook registers publicURL with Telegram, with an optional secret token.
func SetWebhook(api *tgbotapi.BotAPI, publicURL, secret string, dropPending bool) error {
	if _, err := url.ParseRequestURI(publicURL); err != nil {
		return err
	}
	params := tgbotapi.Params{"url": publicURL}
	params.AddNonEmpty("secret_token", secret)
	params.AddBool("drop_pending_updates", dropPending)
	_, err := api.MakeRequest("setWebhook", params)
	return err
}

// DeleteWebhook removes the webhook so long polling can be used.
func DeleteWebhook(api *tgbotapi.BotAPI, dropPending bool) error {
	_, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	return err
}
