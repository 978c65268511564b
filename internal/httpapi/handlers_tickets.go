package httpapi

import (
	"net/http"

	"Helpdesk/internal/domain"
)

type statusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	tickets, err := s.tickets.List(r.Context(), caller)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	var req domain.Ticket
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	ticket, err := s.tickets.Create(r.Context(), caller, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	ticket, err := s.tickets.Get(r.Context(), caller, id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	ticket, err := s.tickets.UpdateStatus(r.Context(), caller, id, req.Status)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	comments, err := s.tickets.Comments(r.Context(), caller, id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, caller domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	comment, err := s.tickets.AddComment(r.Context(), caller, id, req.Content)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	stats, err := s.stats.Dashboard(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
