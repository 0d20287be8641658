package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// loginRequest accepts the email, or the username, as the identity.
type loginRequest struct {
	Email    string `json:"email" validate:"required_without=Username,omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type updateUserRequest struct {
	Role              *string  `json:"role"`
	AllowedCategories []string `json:"allowedCategories"`
}

type userResponse struct {
	ID                   string      `json:"id"`
	Username             string      `json:"username"`
	Email                string      `json:"email"`
	Role                 domain.Role `json:"role"`
	AllowedCategories    []string    `json:"allowedCategories"`
	AccessibleCategories []string    `json:"accessibleCategories"`
	CreatedAt            time.Time   `json:"createdAt"`
	LastLoginAt          *time.Time  `json:"lastLoginAt,omitempty"`
}

type authResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type verifyResponse struct {
	Valid bool           `json:"valid"`
	User  *domain.Claims `json:"user"`
}

type meResponse struct {
	User *domain.Claims `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type usernameAvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

type emailAvailabilityResponse struct {
	Email     string `json:"email"`
	Available bool   `json:"available"`
}

type permissionsResponse struct {
	Role                 domain.Role   `json:"role"`
	Policy               domain.Policy `json:"policy"`
	AccessibleCategories []string      `json:"accessibleCategories"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
}

type singleUserResponse struct {
	User userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	overrides := u.AllowedCategories
	if overrides == nil {
		overrides = []string{}
	}
	return userResponse{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		Role:                 u.Role,
		AllowedCategories:    overrides,
		AccessibleCategories: domain.ResolveAccessibleCategories(u.Principal()),
		CreatedAt:            u.CreatedAt,
		LastLoginAt:          u.LastLoginAt,
	}
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.Claims.ExpiresAt,
		User:      toUserResponse(res.User),
	}
}

// Register creates a new user account and returns a token for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	identifier := req.Email
	if strings.TrimSpace(identifier) == "" {
		identifier = req.Username
	}

	res, err := h.authService.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Verify reports the decoded claims of the bearer token.
//
// @Summary      Verify a token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  verifyResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{Valid: true, User: claims})
}

// Me returns the identity carried by the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: claims})
}

// Logout acknowledges a logout. Tokens are stateless; the client discards it.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Refresh issues a new token from the stored user record.
//
// @Summary      Refresh a token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	res, err := h.authService.Refresh(c.Request().Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), claims, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

// CheckUsername reports whether a username is still free.
//
// @Summary      Username availability
// @Tags         auth
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  usernameAvailabilityResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /auth/check-username/{username} [get]
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	username := c.Param("username")
	ok, err := h.authService.UsernameAvailable(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usernameAvailabilityResponse{Username: domain.NormalizeUsername(username), Available: ok})
}

// CheckEmail reports whether an email is still free.
//
// @Summary      Email availability
// @Tags         auth
// @Produce      json
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  emailAvailabilityResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	email := c.Param("email")
	ok, err := h.authService.EmailAvailable(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emailAvailabilityResponse{Email: domain.NormalizeEmail(email), Available: ok})
}

// Permissions describes the caller's role and accessible categories.
//
// @Summary      Caller permissions
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  permissionsResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	view, err := h.authService.Permissions(claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissionsResponse{
		Role:                 view.Role,
		Policy:               view.Policy,
		AccessibleCategories: view.AccessibleCategories,
	})
}

// ListUsers returns every user without password hashes.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	users, err := h.authService.ListUsers(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, usersResponse{Users: out})
}

// GetUser returns one user without its password hash.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  singleUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/users/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	user, err := h.authService.GetUser(c.Request().Context(), claims, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, singleUserResponse{User: toUserResponse(user)})
}

// UpdateUser changes a user's role and/or category override.
//
// @Summary      Update user access
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Role and category override"
// @Success      200   {object}  singleUserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /auth/users/{id} [patch]
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateUserAccess(c.Request().Context(), claims, c.Param("id"), ports.UpdateAccessInput{
		Role:              req.Role,
		AllowedCategories: req.AllowedCategories,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, singleUserResponse{User: toUserResponse(user)})
}

// DeleteUser removes a user.
//
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.DeleteUser(c.Request().Context(), claims, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
