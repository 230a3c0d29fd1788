package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
	"github.com/oksasatya/library-catalog/pkg/response"
	"github.com/oksasatya/library-catalog/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// registerRequest accepts a role for compatibility with older clients; it
// is never used.
type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "Invalid request body"
		switch {
		case errors.Is(err, io.EOF), validation.HasTag(err, "required"):
			msg = "All fields are required"
		case validation.HasTag(err, "pwd"):
			msg = "Password must be at least 6 characters"
		}
		invalidBody(c, msg, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, response.AuthBody{
		Message: "User registered successfully",
		Token:   res.Token,
		User:    res.User.Public(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) || validation.HasTag(err, "required") {
			msg = "Email and password are required"
		}
		invalidBody(c, msg, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.AuthBody{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User.Public(),
	})
}

// Verify echoes the user resolved by the Authenticate gate.
func (h *AuthHandler) Verify(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.Logger, application.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, response.UserBody{User: u.Public()})
}
