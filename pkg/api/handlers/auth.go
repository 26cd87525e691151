package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/config"
	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/audit"
	"github.com/dmaldonado/nestdesk/pkg/auth"
	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/metrics"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/models"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/team"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users       *repository.UserRepository
	config      *config.Config
	blacklist   *auth.TokenBlacklist
	sessions    *workspace.Manager
	teams       *team.Service
	auditLogger *audit.Service
	metrics     *metrics.Metrics
	validator   *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *repository.UserRepository, cfg *config.Config, blacklist *auth.TokenBlacklist, sessions *workspace.Manager, teams *team.Service, auditLogger *audit.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:       users,
		config:      cfg,
		blacklist:   blacklist,
		sessions:    sessions,
		teams:       teams,
		auditLogger: auditLogger,
		metrics:     m,
		validator:   validator.New(),
	}
}

// Register godoc
// @Summary Register a new agent
// @Description Create a new account with email, password, and display name
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse "Account created"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.Internal(c, err)
	}

	user := &crm.User{
		ID:               uuid.NewString(),
		Email:            req.Email,
		PasswordHash:     hashedPassword,
		Name:             req.Name,
		SubscriptionTier: "free",
		CreatedAt:        time.Now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordUserRegistered()
	go h.auditLogger.Record(context.Background(), user.ID, "register", "user", user.ID, "")

	token, err := auth.GenerateJWT(user.ID, user.Email, user.SubscriptionTier, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return errors.Internal(c, err)
	}

	if _, err := h.sessions.Open(ctx, user); err != nil {
		return errors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, models.AuthResponse{
		Token: token,
		User:  h.userInfo(ctx, user),
	})
}

// Login godoc
// @Summary Login
// @Description Authenticate with email and password, returns a JWT and
// @Description opens the agent's workspace
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		h.metrics.RecordLoginAttempt(false)
		return errors.Unauthorized(c)
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.metrics.RecordLoginAttempt(false)
		return errors.Unauthorized(c)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.SubscriptionTier, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return errors.Internal(c, err)
	}

	// Login creates the workspace: remote load, fallback to the local
	// cache when the backend is unreachable.
	if _, err := h.sessions.Open(ctx, user); err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordLoginAttempt(true)
	go h.auditLogger.Record(context.Background(), user.ID, "login", "user", user.ID, "")

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  h.userInfo(ctx, user),
	})
}

// Logout revokes the current token and drops the caller's workspace.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get(middleware.ContextToken).(string)
	if !ok || token == "" {
		return errors.Unauthorized(c)
	}
	userID := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.blacklist != nil {
		expiration := time.Duration(h.config.JWTExpirationHours) * time.Hour
		if err := h.blacklist.Add(ctx, token, expiration); err != nil {
			return errors.Internal(c, err)
		}
	}
	h.sessions.Close(userID)

	go h.auditLogger.Record(context.Background(), userID, "logout", "user", userID, "")

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

// Me returns the current user's information
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, h.userInfo(c.Request().Context(), user))
}

func (h *AuthHandler) userInfo(ctx context.Context, user *crm.User) *models.UserInfo {
	info := &models.UserInfo{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		SubscriptionTier: user.SubscriptionTier,
	}
	if h.teams != nil {
		if _, err := h.teams.MembershipFor(ctx, user.ID); err == nil {
			info.OnTeam = true
		}
	}
	return info
}
