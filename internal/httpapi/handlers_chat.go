package httpapi

import (
	"net/http"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/usecase"
)

type chatRequest struct {
	Message string            `json:"message"`
	History []domain.ChatTurn `json:"history"`
	APIKey  string            `json:"apiKey"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	text, err := s.chat.Reply(r.Context(), usecase.ChatRequest{
		Message: req.Message,
		History: req.History,
		APIKey:  req.APIKey,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Text: text})
}
