package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ntumia/mediahub/internal/api/dto"
	"github.com/ntumia/mediahub/internal/auth"
	"github.com/ntumia/mediahub/internal/database/models"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		OrgName:         req.OrgName,
		OrgType:         models.OrgType(req.OrgType),
		Description:     req.Description,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		ContactPosition: req.ContactPosition,
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
	})

	if err != nil {
		switch err {
		case auth.ErrUserExists:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: resp.Token,
		User:  userDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		case auth.ErrInactiveUser:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  userDTO(resp.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// AcceptInvite redeems an invite token and creates the account.
func (h *AuthHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req dto.AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.AcceptInvite(r.Context(), req.Token, req.Name, req.Password)
	if err != nil {
		switch err {
		case auth.ErrInvalidInvite:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid invite token"})
		case auth.ErrExpiredInvite:
			writeJSON(w, http.StatusGone, dto.ErrorResponse{Error: "Invite has expired"})
		case auth.ErrUserExists:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not accept invite"})
		}
		return
	}

	setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: resp.Token,
		User:  userDTO(resp.User),
	})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

func userDTO(u *models.User) dto.UserDTO {
	out := dto.UserDTO{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if u.OrganizationID != nil {
		out.OrganizationID = u.OrganizationID.String()
	}
	if u.Organization != nil {
		out.OrgName = u.Organization.Name
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
