package services

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krshsl/mulakat/backend/apperr"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CompanyRegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	TaxNumber string `json:"taxNumber" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

type UserRegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/company/register", e.CompanyRegisterHandler)
		r.Post("/company/login", e.CompanyLoginHandler)
		r.Post("/register", e.UserRegisterHandler)
		r.Post("/login", e.UserLoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(e.authService.Middleware)
			r.Get("/me", e.MeHandler)
		})
	})
}

func (e *AuthEndpoints) CompanyRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req CompanyRegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	company, err := e.authService.RegisterCompany(r.Context(), CompanyRegistration{
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Password:  req.Password,
	})
	if err != nil {
		slog.Error("Company registration failed", "error", err, "email", req.Email)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Company registered",
		"company": company,
	})
}

func (e *AuthEndpoints) CompanyLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	authResponse, err := e.authService.LoginCompany(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Company login failed", "error", err, "email", req.Email)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse)
}

func (e *AuthEndpoints) UserRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req UserRegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := e.authService.RegisterUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		slog.Error("User registration failed", "error", err, "email", req.Email)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered",
		"user":    user,
	})
}

func (e *AuthEndpoints) UserLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	authResponse, err := e.authService.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("User login failed", "error", err, "email", req.Email)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse)
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	account, err := e.authService.Account(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"identity": identity,
		"account":  account,
	})
}
