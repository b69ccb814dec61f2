package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leadbot/internal/model"
	"leadbot/internal/service"
)

// Handler serves the admin console API.
type Handler struct {
	settings *service.SettingsService
	users    *service.UserService
	reports  *service.ReportService
	log      *zap.Logger
	now      func() time.Time
}

func NewHandler(settings *service.SettingsService, users *service.UserService, reports *service.ReportService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		settings: settings,
		users:    users,
		reports:  reports,
		log:      log.Named("admin"),
		now:      time.Now,
	}
}

// Routes mounts under /api/admin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/settings", h.handleGetSettings)
	r.Post("/settings", h.handleSaveSettings)
	r.Get("/users", h.handleListUsers)
	r.Post("/message", h.handleSendMessage)
	r.Get("/export", h.handleExport)
	r.Get("/stats", h.handleStats)
	return r
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.log.Error("load settings", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	h.jsonResponse(w, http.StatusOK, settings)
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	// An unreadable body saves the defaults, like an empty form would.
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Debug("settings body", zap.Error(err))
		body = nil
	}

	saved, err := h.settings.Save(r.Context(), parseSettings(body))
	if err != nil {
		h.log.Error("save settings", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	h.jsonResponse(w, http.StatusOK, saved)
}

// parseSettings reads loosely typed form values. questionsEnabled is false
// only for false or "false".
func parseSettings(body map[string]any) service.PromptSettings {
	str := func(key string) string {
		v, ok := body[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}

	enabled := true
	switch v := body["questionsEnabled"].(type) {
	case bool:
		enabled = v
	case string:
		enabled = v != "false"
	}

	return service.PromptSettings{
		GreetingText:     str("greetingText"),
		AskPhoneText:     str("askPhoneText"),
		AskJobText:       str("askJobText"),
		FinalMessage:     str("finalMessage"),
		QuestionsEnabled: enabled,
	}
}

type userResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Username  *string   `json:"username"`
	Phone     string    `json:"phone"`
	Job       string    `json:"job"`
	Step      string    `json:"step"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u model.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		Job:       u.Job,
		Step:      u.Step.String(),
		CreatedAt: u.CreatedAt,
	}
	if u.Username != "" {
		username := u.Username
		resp.Username = &username
	}
	return resp
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

type messageRequest struct {
	UserIDs []uint `json:"userIds"`
	Text    string `json:"text"`
	All     bool   `json:"all"`
}

type messageResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.users.Send(r.Context(), service.DirectMessage{
		UserIDs: req.UserIDs,
		All:     req.All,
		Text:    req.Text,
	})
	switch {
	case errors.Is(err, service.ErrEmptyText), errors.Is(err, service.ErrNoRecipients):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrNotConfigured):
		h.errorResponse(w, http.StatusServiceUnavailable, "Bot token is not configured")
		return
	case err != nil:
		h.log.Error("send message", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.jsonResponse(w, http.StatusOK, messageResponse{Sent: result.Sent(), Failed: len(result.Failed)})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.users.ExportCSV(r.Context(), &buf); err != nil {
		h.log.Error("export users", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to export users")
		return
	}

	name := fmt.Sprintf("users-%s.csv", h.now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := h.reports.Summary(r.Context(), h.now())
	if err != nil {
		h.log.Error("build summary", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to build stats")
		return
	}
	h.jsonResponse(w, http.StatusOK, sum)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Warn("encode response", zap.Error(err))
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": strings.TrimSpace(message)})
}
