package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/reviewhub/internal/accounts"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (accounts.Session, error)
}

type AuthHandler struct {
	accounts AccountService
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{accounts: svc}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt dominates here; the timeout bounds the two store round trips
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	u, err := h.accounts.Register(cctx, accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, accounts.ErrValidation):
			RespondBadRequest(ctx, "All fields are required.", nil)
		default:
			RespondInternal(ctx, "Could not create user", err)
		}
		return
	}

	RespondOK(ctx, http.StatusCreated, "User registered successfully", gin.H{
		"user": u.Public(),
	})
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	session, err := h.accounts.Authenticate(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Email or password is incorrect.", nil)
			return
		}

		RespondInternal(ctx, "Could not sign in", err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Signed in successfully", gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}
