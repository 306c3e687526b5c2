package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"interview-coach/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Заголовки уже отправлены, остается только лог на стороне chi.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startRequest struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Grade      string `json:"grade"`
	Experience string `json:"experience"`
}

// handleStart создает сессию интервью и возвращает ее идентификатор.
// Первый вопрос клиент получит через /api/poll.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "невалидный JSON в теле запроса")
		return
	}

	id := s.sessions.StartSession(session.Meta{
		Name:       strings.TrimSpace(req.Name),
		Position:   strings.TrimSpace(req.Position),
		Grade:      strings.TrimSpace(req.Grade),
		Experience: strings.TrimSpace(req.Experience),
	})
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleMessage принимает реплику кандидата. Ответные сообщения появятся
// в /api/poll по мере готовности.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "невалидный JSON в теле запроса")
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		writeError(w, http.StatusBadRequest, "message не может быть пустым")
		return
	}

	webSess, ok := s.sessions.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "сессия не найдена")
		return
	}
	if err := webSess.sendReply(text); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// handlePoll отдает накопленные сообщения сессии. Прочитанные сообщения
// из буфера удаляются.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	webSess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "сессия не найдена")
		return
	}

	messages, completed := webSess.drain()
	if messages == nil {
		messages = []Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":  messages,
		"completed": completed,
	})
}

type stopRequest struct {
	SessionID string `json:"session_id"`
}

// handleStop завершает интервью. Отчет возвращается сразу, если успел
// сформироваться, иначе придет через /api/poll.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "невалидный JSON в теле запроса")
		return
	}

	webSess, ok := s.sessions.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "сессия не найдена")
		return
	}

	report := webSess.finish()
	response := map[string]any{"status": "stopped"}
	if report != nil {
		response["report"] = report
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}
