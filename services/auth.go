package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
	"github.com/krshsl/mulakat/backend/repository"
)

// Identity kinds carried in the token.
const (
	KindCompany = "company"
	KindUser    = "user"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

type identityKey struct{}

// IdentityFromContext returns the identity set by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type AuthService struct {
	accounts  repository.AccountStore
	jwtSecret []byte
	expiry    time.Duration
}

type BearerClaims struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Company *models.Company `json:"company,omitempty"`
	User    *models.User    `json:"user,omitempty"`
}

type CompanyRegistration struct {
	Name      string
	TaxNumber string
	Email     string
	Phone     string
	Address   string
	Password  string
}

func NewAuthService(accounts repository.AccountStore, jwtSecret string, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		jwtSecret: []byte(jwtSecret),
		expiry:    expiry,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// RegisterCompany creates a company account. Tax number and email are unique.
func (s *AuthService) RegisterCompany(ctx context.Context, reg CompanyRegistration) (*models.Company, error) {
	existing, err := s.accounts.GetCompanyByTaxNumber(ctx, reg.TaxNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing company: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a company with this tax number already exists")
	}
	existing, err = s.accounts.GetCompanyByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing company: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a company with this email already exists")
	}

	hashed, err := hashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	company := &models.Company{
		ID:        uuid.New().String(),
		Name:      reg.Name,
		TaxNumber: reg.TaxNumber,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Address:   reg.Address,
		Password:  hashed,
	}
	if err := s.accounts.CreateCompany(ctx, company); err != nil {
		return nil, err
	}

	slog.Info("Company registered", "company_id", company.ID, "email", company.Email)
	return company, nil
}

// LoginCompany checks company credentials and issues a bearer token.
func (s *AuthService) LoginCompany(ctx context.Context, email, password string) (*AuthResponse, error) {
	company, err := s.accounts.GetCompanyByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil || bcrypt.CompareHashAndPassword([]byte(company.Password), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.generateToken(KindCompany, company.ID, company.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("Company logged in", "company_id", company.ID)
	return &AuthResponse{Token: token, Company: company}, nil
}

// RegisterUser creates a practice user. Emails are stored lower-cased.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a user with this email already exists")
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashed,
	}
	if err := s.accounts.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// LoginUser checks user credentials and issues a bearer token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.accounts.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.generateToken(KindUser, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) generateToken(kind, subject, email string) (string, error) {
	now := time.Now()
	claims := &BearerClaims{
		Kind:  kind,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken parses a bearer token into an Identity.
func (s *AuthService) VerifyToken(token string) (Identity, error) {
	claims := &BearerClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Identity{}, &apperr.AppError{Code: apperr.CodeUnauthorized, Message: "invalid token", Cause: err}
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, apperr.Unauthorized("invalid token")
	}
	if claims.Kind != KindCompany && claims.Kind != KindUser {
		return Identity{}, apperr.Unauthorized("invalid token kind")
	}

	return Identity{Kind: claims.Kind, ID: claims.Subject, Email: claims.Email}, nil
}

// Account loads the company or user behind identity. A token whose account
// no longer exists is rejected.
func (s *AuthService) Account(ctx context.Context, identity Identity) (interface{}, error) {
	var (
		account interface{}
		missing bool
	)
	switch identity.Kind {
	case KindCompany:
		company, err := s.accounts.GetCompanyByID(ctx, identity.ID)
		if err != nil {
			return nil, err
		}
		account, missing = company, company == nil
	case KindUser:
		user, err := s.accounts.GetUserByID(ctx, identity.ID)
		if err != nil {
			return nil, err
		}
		account, missing = user, user == nil
	default:
		return nil, apperr.Unauthorized("invalid token kind")
	}
	if missing {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	return account, nil
}

// Middleware authenticates the Authorization bearer token. Websocket
// handshakes may pass it as ?token= instead.
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found && websocket.IsWebSocketUpgrade(r) {
			token, found = r.URL.Query().Get("token"), true
		}
		if !found || token == "" {
			writeError(w, apperr.Unauthorized("missing bearer token"))
			return
		}

		identity, err := s.VerifyToken(token)
		if err != nil {
			slog.Warn("Rejected bearer token", "error", err, "path", r.URL.Path)
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireKind rejects identities of any other kind. It runs after Middleware.
func RequireKind(kind string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity.Kind != kind {
				writeError(w, apperr.Unauthorized(fmt.Sprintf("%s account required", kind)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
