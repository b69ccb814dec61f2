package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadbot/internal/service"
)

type apiCall struct {
	Method string
	Form   url.Values
}

// fakeTelegram answers Bot API calls the way api.telegram.org does for a healthy bot.
type fakeTelegram struct {
	mu     sync.Mutex
	calls  []apiCall
	failOn map[string]string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	_ = r.ParseForm()

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Form: r.PostForm})
	desc, fail := f.failOn[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"` + desc + `"}`))
		return
	}
	switch method {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Lead","username":"lead_bot"}}`))
	case "sendMessage":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":100,"date":0,"chat":{"id":1,"type":"private"}}}`))
	case "copyMessage":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":101}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeTelegram) callsTo(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestAPI(t *testing.T) (*tgbotapi.BotAPI, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{failOn: make(map[string]string)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient() error = %v", err)
	}
	return api, fake
}

func TestDeliverySendText(t *testing.T) {
	api, fake := newTestAPI(t)
	d := NewDelivery(api)

	if err := d.SendText(context.Background(), 5, "Salom"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	calls := fake.callsTo("sendMessage")
	if len(calls) != 1 {
		t.Fatalf("sendMessage calls = %d", len(calls))
	}
	if calls[0].Form.Get("chat_id") != "5" || calls[0].Form.Get("text") != "Salom" {
		t.Fatalf("form = %v", calls[0].Form)
	}
}

func TestDeliveryCopyMessage(t *testing.T) {
	api, fake := newTestAPI(t)

	if err := NewDelivery(api).CopyMessage(context.Background(), 7, 1, 55); err != nil {
		t.Fatalf("CopyMessage() error = %v", err)
	}
	calls := fake.callsTo("copyMessage")
	if len(calls) != 1 {
		t.Fatalf("copyMessage calls = %d", len(calls))
	}
	f := calls[0].Form
	if f.Get("chat_id") != "7" || f.Get("from_chat_id") != "1" || f.Get("message_id") != "55" {
		t.Fatalf("form = %v", f)
	}
}

func TestDeliverySendWithButtons(t *testing.T) {
	api, fake := newTestAPI(t)

	err := NewDelivery(api).SendWithButtons(context.Background(), 1, service.BroadcastConfirmPrompt, service.BroadcastButtons)
	if err != nil {
		t.Fatalf("SendWithButtons() error = %v", err)
	}
	calls := fake.callsTo("sendMessage")
	if len(calls) != 1 {
		t.Fatalf("sendMessage calls = %d", len(calls))
	}
	markup := calls[0].Form.Get("reply_markup")
	for _, want := range []string{service.CallbackBroadcastYes, service.CallbackBroadcastNo, "inline_keyboard"} {
		if !strings.Contains(markup, want) {
			t.Fatalf("reply_markup %s lacks %q", markup, want)
		}
	}
}

func TestDeliveryAnswerCallback(t *testing.T) {
	api, fake := newTestAPI(t)

	if err := NewDelivery(api).AnswerCallback(context.Background(), "cb-9"); err != nil {
		t.Fatalf("AnswerCallback() error = %v", err)
	}
	calls := fake.callsTo("answerCallbackQuery")
	if len(calls) != 1 || calls[0].Form.Get("callback_query_id") != "cb-9" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestDeliveryReportsAPIErrors(t *testing.T) {
	api, fake := newTestAPI(t)
	fake.failOn["copyMessage"] = "Forbidden: bot was blocked by the user"

	err := NewDelivery(api).CopyMessage(context.Background(), 7, 1, 55)
	if err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Fatalf("CopyMessage() error = %v", err)
	}
}

func TestDeliveryUnconfigured(t *testing.T) {
	d := NewDelivery(nil)
	if d.Configured() {
		t.Fatal("Configured() = true without api")
	}
	if err := d.SendText(context.Background(), 1, "x"); !errors.Is(err, service.ErrNotConfigured) {
		t.Fatalf("SendText() error = %v", err)
	}
	if err := d.CopyMessage(context.Background(), 1, 2, 3); !errors.Is(err, service.ErrNotConfigured) {
		t.Fatalf("CopyMessage() error = %v", err)
	}
}

func TestSetAndDeleteWebhook(t *testing.T) {
	api, fake := newTestAPI(t)

	if err := SetWebhook(api, "https://example.com/api/telegram", "s3cret", true); err != nil {
		t.Fatalf("SetWebhook() error = %v", err)
	}
	calls := fake.callsTo("setWebhook")
	if len(calls) != 1 {
		t.Fatalf("setWebhook calls = %d", len(calls))
	}
	f := calls[0].Form
	if f.Get("url") != "https://example.com/api/telegram" || f.Get("secret_token") != "s3cret" || f.Get("drop_pending_updates") != "true" {
		t.Fatalf("form = %v", f)
	}

	if err := SetWebhook(api, "not a url", "", false); err == nil {
		t.Fatal("SetWebhook() accepted an invalid url")
	}

	if err := DeleteWebhook(api, false); err != nil {
		t.Fatalf("DeleteWebhook() error = %v", err)
	}
	if len(fake.callsTo("deleteWebhook")) != 1 {
		t.Fatal("deleteWebhook not called")
	}
}
