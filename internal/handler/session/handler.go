package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/shopease/backend/internal/analysis/suggestion"
	"github.com/zhouzirui/shopease/backend/internal/model/chat"
	"github.com/zhouzirui/shopease/backend/internal/service/assistant"
	sessionService "github.com/zhouzirui/shopease/backend/internal/service/session"
	"github.com/zhouzirui/shopease/backend/internal/service/transcript"
	"github.com/zhouzirui/shopease/backend/pkg/utils"
)

// maxImportBytes 限制导入文件的大小
const maxImportBytes = 5 << 20

// Handler 当前会话与已保存会话的HTTP处理器
type Handler struct {
	ctrl  *sessionService.Controller
	store *transcript.Store
}

// New 创建会话处理器
func New(ctrl *sessionService.Controller, store *transcript.Store) *Handler {
	return &Handler{ctrl: ctrl, store: store}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session", h.handleCurrent)
	r.Post("/session/new", h.handleStartNew)
	r.Post("/session/save", h.handleSave)
	r.Get("/session/export", h.handleExport)
	r.Post("/session/import", h.handleImport)

	r.Get("/sessions", h.handleList)
	r.Post("/sessions/{id}/load", h.handleLoad)
	r.Delete("/sessions/{id}", h.handleDelete)
}

type sessionView struct {
	sessionService.Snapshot
	Suggestions []suggestion.Suggestion `json:"suggestions"`
}

type listingView struct {
	Sessions []chat.Summary `json:"sessions"`
	Errors   []string       `json:"errors"`
}

func (h *Handler) currentView() sessionView {
	snap := h.ctrl.Snapshot()
	return sessionView{
		Snapshot:    snap,
		Suggestions: assistant.SuggestFor(snap.Messages, snap.Processing),
	}
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.currentView())
}

func (h *Handler) handleStartNew(w http.ResponseWriter, r *http.Request) {
	h.ctrl.StartNew()
	utils.RespondJSON(w, http.StatusCreated, h.currentView())
}

// handleSave 保存当前会话，并返回刷新后的会话列表
func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	saved, err := h.ctrl.Save(r.Context(), payload.Title)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	listing, err := h.listing(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"saved": chat.Summary{
			ID:        saved.ID,
			Title:     saved.Title,
			CreatedAt: saved.CreatedAt,
			Preview:   transcript.Preview(saved.Messages),
		},
		"sessions": listing.Sessions,
		"errors":   listing.Errors,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	record := h.ctrl.ExportCurrent()
	utils.RespondDownload(w, ExportFilename(record.Metadata.ChatID), record)
}

// handleImport 接受原始JSON请求体，或表单字段 file 中上传的导出文件
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	data, err := readImport(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ctrl.ImportFrom(data); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.currentView())
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listing(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ctrl.LoadExisting(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.currentView())
}

// handleDelete 删除后返回最新列表，客户端不需要再次拉取
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	listing, err := h.listing(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, listing)
}

func (h *Handler) listing(r *http.Request) (listingView, error) {
	listing, err := h.store.List(r.Context())
	if err != nil {
		return listingView{}, err
	}

	view := listingView{
		Sessions: listing.Sessions,
		Errors:   make([]string, 0, len(listing.Errors)),
	}
	if view.Sessions == nil {
		view.Sessions = []chat.Summary{}
	}
	for _, e := range listing.Errors {
		view.Errors = append(view.Errors, e.Error())
	}
	return view, nil
}

// ExportFilename 返回导出文件名，使用会话ID的前8个字符
func ExportFilename(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("shopease_chat_%s.json", short)
}

func readImport(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("file field is required")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}
	return data, nil
}

func respondServiceError(w http.ResponseWriter, err error) {
	var parseErr *transcript.ParseError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, transcript.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sessionService.ErrTurnInFlight):
		status = http.StatusConflict
	case errors.Is(err, transcript.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, transcript.ErrNothingToSave),
		errors.Is(err, sessionService.ErrInvalidFormat),
		errors.As(err, &parseErr),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Printf("[session] request failed: %v", err)
	}
	utils.RespondError(w, status, err.Error())
}
