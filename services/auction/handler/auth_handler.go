package handler

import (
	"fmt"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AuthServiceInterface interface {
	Signup(name, email, password string) (model.User, error)
	Login(email, password string) (string, error)
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignupHandler handles POST /api/auth/signup
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	var req helpers.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SignupHandler", err)
		return
	}

	user, err := h.service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SignupHandler: failed to create account", map[string]any{"email": req.Email, "error": err.Error()})
		return
	}

	resp := helpers.SignupResponse{UserID: user.UserID, Name: user.Name, Email: user.Email}
	utils.JSONResponse(c, http.StatusCreated, resp, "account created successfully")
	helpers.LogSuccess("SignupHandler", "account created successfully", map[string]any{
		"user_id": user.UserID,
		"email":   user.Email,
	})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LoginHandler: failed login attempt", map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.TokenResponse{Token: token}, "login successful")
}
