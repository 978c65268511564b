package httpapi

import (
	"net/http"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/usecase"
)

type createUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type updateUserRequest struct {
	Name  *string      `json:"name"`
	Email *string      `json:"email"`
	Role  *domain.Role `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	user, err := s.users.Create(r.Context(), usecase.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	user, err := s.users.Update(r.Context(), id, domain.UserPatch{Name: req.Name, Email: req.Email, Role: req.Role})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
