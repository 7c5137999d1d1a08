package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/entities"
	"github.com/Akshat120/Book-Review-API/internal/metrics"
)

// AuthService is the account and login logic the users controller needs.
type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*entities.User, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
}

type UsersController struct {
	authService  AuthService
	issuer       auth.TokenIssuer
	cookie       auth.CookieConfig
	auditService *audit.Service
	loginLimiter *auth.LoginLimiter
}

func NewUsersController(authService AuthService, issuer auth.TokenIssuer, cookie auth.CookieConfig, auditService *audit.Service) *UsersController {
	return &UsersController{
		authService:  authService,
		issuer:       issuer,
		cookie:       cookie,
		auditService: auditService,
	}
}

// SetLoginLimiter enables lockout after repeated failed logins.
func (uc *UsersController) SetLoginLimiter(limiter *auth.LoginLimiter) {
	uc.loginLimiter = limiter
}

type signupRequest struct {
	Name     string `json:"name" binding:"max=255"`
	Username string `json:"username" binding:"max=255"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username" binding:"max=255"`
	Password string `json:"password"`
}

type loginUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
}

// Signup registers a new account
// POST /signup
func (uc *UsersController) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.authService.Signup(c.Request.Context(), auth.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	metrics.RecordAuthAttempt(audit.ActionSignup, err)

	var userID uint
	if user != nil {
		userID = user.ID
	}
	if uc.auditService != nil {
		ip, ua := clientInfo(c)
		uc.auditService.LogAuth(userID, audit.ActionSignup, ip, ua, err)
	}

	switch {
	case err == nil:
		respondCreated(c, SuccessResponse{Message: "User created successfully"})
	case auth.IsValidationError(err):
		respondBadRequest(c, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondInternalError(c, err, "signup")
	}
}

// Login verifies credentials and sets the session cookie
// POST /login
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	ip := c.ClientIP()
	if uc.loginLimiter != nil {
		if allowed, retryAfter := uc.loginLimiter.Allow(ip, req.Username); !allowed {
			metrics.RecordAuthAttempt(audit.ActionLogin, auth.ErrTooManyAttempts)
			c.Header("Retry-After", auth.RetryAfterSeconds(retryAfter))
			respondError(c, http.StatusTooManyRequests, auth.ErrTooManyAttempts.Error())
			return
		}
	}

	result, err := uc.authService.Login(c.Request.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	metrics.RecordAuthAttempt(audit.ActionLogin, err)

	var userID uint
	if result != nil {
		userID = result.User.ID
	}
	if uc.auditService != nil {
		ip, ua := clientInfo(c)
		uc.auditService.LogAuth(userID, audit.ActionLogin, ip, ua, err)
	}

	switch {
	case err == nil:
		if uc.loginLimiter != nil {
			uc.loginLimiter.RecordSuccess(ip, req.Username)
		}
	case auth.IsValidationError(err):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		if uc.loginLimiter != nil && uc.loginLimiter.RecordFailure(ip, req.Username) {
			log.Printf("Login locked out for %q from %s", req.Username, ip)
		}
		respondUnauthorized(c, err.Error())
		return
	default:
		respondInternalError(c, err, "login")
		return
	}

	auth.SetSessionCookie(c, uc.cookie, result.Token)
	c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    loginUser{Username: result.User.Username, Name: result.User.Name},
	})
}

// Logout clears the session cookie. Store-backed sessions are also revoked
// server side; JWTs stay valid until they expire.
// POST /logout
func (uc *UsersController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	token, _ := auth.TokenFromRequest(c, uc.cookie.Name)

	if token != "" && uc.issuer != nil {
		identity, err := uc.issuer.Verify(ctx, token)
		if err == nil {
			if revoker, ok := uc.issuer.(auth.Revoker); ok {
				if err := revoker.Revoke(ctx, token); err != nil {
					respondInternalError(c, err, "logout")
					return
				}
			}
			if uc.auditService != nil {
				ip, ua := clientInfo(c)
				uc.auditService.LogAuth(identity.UserID, audit.ActionLogout, ip, ua, nil)
			}
		}
	}

	auth.ClearSessionCookie(c, uc.cookie)
	respondSuccess(c, "Logout successful")
}
