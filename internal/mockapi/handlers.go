package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentsight/agentsight-go/pkg/logger"
	"github.com/agentsight/agentsight-go/pkg/model"
)

// Handler serves the mock AgentSight REST endpoints.
type Handler struct {
	store  *Store
	logger *logger.Logger
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *Store, log *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"detail": message,
	})
}

func decodeBody(r *http.Request) (map[string]any, error) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// Track handles POST /api/track/ for questions and answers.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := stringField(data, "content")
	if content == "" {
		writeError(w, http.StatusBadRequest, "content cannot be empty")
		return
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}

	kind := "question"
	if stringField(data, "sender") == string(model.SenderAgent) {
		kind = "answer"
	}

	rec := h.store.AddRecord(conversationID, kind, stringField(data, "timestamp"), data)
	writeJSON(w, http.StatusCreated, rec)
}

// ActionLog handles POST /api/action_logs/.
func (h *Handler) ActionLog(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if stringField(data, "action_name") == "" {
		writeError(w, http.StatusBadRequest, "action_name cannot be empty")
		return
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}

	rec := h.store.AddRecord(conversationID, "action", stringField(data, "timestamp"), data)
	writeJSON(w, http.StatusCreated, rec)
}

// Button handles POST /api/buttons/.
func (h *Handler) Button(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, key := range []string{"button_event", "label", "value"} {
		if stringField(data, key) == "" {
			writeError(w, http.StatusBadRequest, key+" cannot be empty")
			return
		}
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}

	rec := h.store.AddRecord(conversationID, "button", stringField(data, "timestamp"), data)
	writeJSON(w, http.StatusCreated, rec)
}

// Attachments handles POST /api/attachments/ in both JSON (base64 mode) and
// multipart (form_data mode) bodies.
func (h *Handler) Attachments(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.multipartAttachments(w, r)
		return
	}

	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}

	rec := h.store.AddRecord(conversationID, "attachments", stringField(data, "timestamp"), data)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) multipartAttachments(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	conversationID := r.FormValue("conversation")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation cannot be empty")
		return
	}

	var files []map[string]any
	for field, headers := range r.MultipartForm.File {
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable attachment "+field)
				return
			}
			size, _ := io.Copy(io.Discard, f)
			f.Close()
			files = append(files, map[string]any{
				"field":     field,
				"filename":  hdr.Filename,
				"mime_type": hdr.Header.Get("Content-Type"),
				"size":      size,
			})
		}
	}

	data := map[string]any{
		"attachments": files,
		"mode":        r.FormValue("mode"),
		"sender":      r.FormValue("sender"),
		"metadata":    r.FormValue("metadata"),
	}
	rec := h.store.AddRecord(conversationID, "attachments", r.FormValue("timestamp"), data)
	writeJSON(w, http.StatusCreated, rec)
}

// CreateConversation handles POST /api/conversations/ with get-or-create
// semantics keyed by conversation_id.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}

	conv := h.store.GetOrCreate(conversationID, data)
	h.logger.Info("conversation stored",
		zap.String("conversation_id", conversationID),
		zap.Int("pk", conv.PK))
	writeJSON(w, http.StatusCreated, conv)
}

// ListConversations handles GET /api/conversations/.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		ConversationID:  q.Get("conversation_id"),
		CustomerID:      q.Get("customer_id"),
		Device:          q.Get("device"),
		Language:        q.Get("language"),
		Name:            q.Get("name"),
		MessageContains: q.Get("message_contains"),
	}
	if v := q.Get("is_marked"); v != "" {
		marked := v == "true"
		filter.IsMarked = &marked
	}
	filter.IncludeDeleted = q.Get("include_deleted") == "true"
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filter.PageSize = size
	}

	writeJSON(w, http.StatusOK, h.store.List(filter))
}

// GetConversation handles GET /api/conversations/{pk}/.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// LookupConversation handles GET /api/conversations/lookup/.
func (h *Handler) LookupConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	conv, err := h.store.Lookup(conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// RenameConversation handles PATCH /api/conversations/{pk}/rename/.
func (h *Handler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	pk, ok := pkFromPath(w, r)
	if !ok {
		return
	}
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := stringField(data, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	conv, err := h.store.Rename(pk, name)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// MarkConversation handles PATCH /api/conversations/{pk}/mark/.
func (h *Handler) MarkConversation(w http.ResponseWriter, r *http.Request) {
	pk, ok := pkFromPath(w, r)
	if !ok {
		return
	}
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	marked, _ := data["is_marked"].(bool)

	conv, err := h.store.Mark(pk, marked)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteConversation handles DELETE /api/conversations/{pk}/delete/.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	pk, ok := pkFromPath(w, r)
	if !ok {
		return
	}

	conv, err := h.store.SoftDelete(pk)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      conv.PK,
		"deleted": true,
	})
}

// UpdateConversation handles PATCH /api/conversations/{pk}/update/.
func (h *Handler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	pk, ok := pkFromPath(w, r)
	if !ok {
		return
	}
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.store.Update(pk, data)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// ConversationAttachments handles GET /api/conversations/{pk}/attachments/.
func (h *Handler) ConversationAttachments(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}

	records := h.store.Records(conv.PK, "attachments")
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"results": records,
	})
}

// Feedback handles POST /api/conversation-feedbacks/.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	data, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	conversationID := stringField(data, "conversation_id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id cannot be empty")
		return
	}
	sentiment := model.Sentiment(stringField(data, "sentiment"))
	if !sentiment.Valid() {
		writeError(w, http.StatusBadRequest, "invalid sentiment")
		return
	}

	conv, err := h.store.Lookup(conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	fb := h.store.AddFeedback(conv.PK, string(sentiment), stringField(data, "comment"), stringField(data, "source"))
	writeJSON(w, http.StatusCreated, fb)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func pkFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	pk, err := strconv.Atoi(chi.URLParam(r, "pk"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation pk")
		return 0, false
	}
	return pk, true
}

func (h *Handler) conversationFromPath(w http.ResponseWriter, r *http.Request) (*Conversation, bool) {
	pk, ok := pkFromPath(w, r)
	if !ok {
		return nil, false
	}
	conv, err := h.store.ByPK(pk)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return nil, false
	}
	return conv, true
}
