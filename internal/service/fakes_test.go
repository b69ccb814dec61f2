package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"leadbot/internal/model"
)

var errBoom = errors.New("boom")

type fakeUsers struct {
	mu     sync.Mutex
	byTG   map[int64]*model.User
	nextID uint
	clock  time.Time

	createErr error
	updateErr error

	// onFind runs inside FindByTelegramID before the lookup. Returning
	// true reports the record as missing.
	onFind func(f *fakeUsers, telegramID int64) bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byTG:  make(map[int64]*model.User),
		clock: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeUsers) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeUsers) FindByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onFind != nil && f.onFind(f, telegramID) {
		return nil, model.ErrNotFound
	}
	u, ok := f.byTG[telegramID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byTG[user.TelegramID]; ok {
		return model.ErrDuplicate
	}
	f.insertLocked(user)
	return nil
}

func (f *fakeUsers) insertLocked(user *model.User) {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = f.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.byTG[user.TelegramID] = &cp
}

func (f *fakeUsers) Update(_ context.Context, id uint, upd model.UserUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, u := range f.byTG {
		if u.ID == id {
			upd.Apply(u)
			u.UpdatedAt = f.tick()
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) Upsert(_ context.Context, telegramID int64, create model.User, upd model.UserUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byTG[telegramID]; ok {
		upd.Apply(u)
		u.UpdatedAt = f.tick()
		cp := *u
		return &cp, nil
	}
	create.TelegramID = telegramID
	f.insertLocked(&create)
	return &create, nil
}

func (f *fakeUsers) ListAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.byTG))
	for _, u := range f.byTG {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeUsers) ListByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	all, _ := f.ListAll(ctx)
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.User
	for _, u := range all {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) get(telegramID int64) (model.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byTG[telegramID]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// put stores u as is, including steps the funnel does not know.
func (f *fakeUsers) put(u model.User) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertLocked(&u)
	return u
}

type fakeSettings struct {
	mu  sync.Mutex
	row *model.Settings

	// onClear runs inside ClearBroadcastIf before the comparison.
	onClear func(s *model.Settings)
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{}
}

func (f *fakeSettings) GetOrCreate(context.Context) (*model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLocked()
	cp := *f.row
	return &cp, nil
}

func (f *fakeSettings) ensureLocked() {
	if f.row == nil {
		s := model.NewSettings()
		f.row = &s
	}
}

func (f *fakeSettings) Update(_ context.Context, upd model.SettingsUpdate) (*model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLocked()
	applySettings(f.row, upd)
	cp := *f.row
	return &cp, nil
}

func (f *fakeSettings) ClearBroadcastIf(_ context.Context, ref model.MessageRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLocked()
	if f.onClear != nil {
		f.onClear(f.row)
	}
	cur, ok := f.row.Pending().Source()
	if !ok || cur != ref {
		return false, nil
	}
	f.row.SetPending(model.NoPendingBroadcast())
	return true, nil
}

func (f *fakeSettings) pending() model.PendingBroadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLocked()
	return f.row.Pending()
}

func (f *fakeSettings) set(mut func(s *model.Settings)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLocked()
	mut(f.row)
}

func applySettings(s *model.Settings, upd model.SettingsUpdate) {
	if upd.GreetingText != nil {
		s.GreetingText = *upd.GreetingText
	}
	if upd.AskPhoneText != nil {
		s.AskPhoneText = *upd.AskPhoneText
	}
	if upd.AskJobText != nil {
		s.AskJobText = *upd.AskJobText
	}
	if upd.FinalMessage != nil {
		s.FinalMessage = *upd.FinalMessage
	}
	if upd.QuestionsEnabled != nil {
		s.QuestionsEnabled = *upd.QuestionsEnabled
	}
	if upd.Broadcast != nil {
		s.SetPending(*upd.Broadcast)
	}
}

type sentText struct {
	ChatID int64
	Text   string
}

type copiedMessage struct {
	To        int64
	From      int64
	MessageID int
}

type fakeMessenger struct {
	mu         sync.Mutex
	configured bool

	texts    []sentText
	copies   []copiedMessage
	answered []string
	keyboard []sentText

	failCopyTo  map[int64]bool
	failText    bool
	failButtons bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{configured: true, failCopyTo: make(map[int64]bool)}
}

func (f *fakeMessenger) Configured() bool { return f.configured }

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return ErrNotConfigured
	}
	if f.failText {
		return errBoom
	}
	f.texts = append(f.texts, sentText{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) CopyMessage(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return ErrNotConfigured
	}
	if f.failCopyTo[toChatID] {
		return errBoom
	}
	f.copies = append(f.copies, copiedMessage{To: toChatID, From: fromChatID, MessageID: messageID})
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	if !f.configured {
		return ErrNotConfigured
	}
	return nil
}

func (f *fakeMessenger) SendWithButtons(_ context.Context, chatID int64, text string, buttons []Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configured {
		return ErrNotConfigured
	}
	if f.failButtons {
		return errBoom
	}
	f.keyboard = append(f.keyboard, sentText{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.texts {
		if t.ChatID == chatID {
			out = append(out, t.Text)
		}
	}
	return out
}

func (f *fakeMessenger) lastTextTo(chatID int64) string {
	texts := f.textsTo(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}
