package response

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

// AuthBody is returned by register and login.
type AuthBody struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    entity.PublicUser `json:"user"`
}

type UserBody struct {
	Message string            `json:"message,omitempty"`
	User    entity.PublicUser `json:"user"`
}

type BookBody struct {
	Message string      `json:"message"`
	Book    entity.Book `json:"book"`
}

// Error aborts the chain and writes an error body.
func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	ctx.AbortWithStatusJSON(status, ErrorBody{Message: message, Errors: details})
}

func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, MessageBody{Message: message})
}
