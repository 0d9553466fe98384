package httperr

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// FromError escreve qualquer erro vindo de um use case.
// Erros que não são de negócio viram 500 e ficam só no log.
func FromError(c *gin.Context, err error) {
	if be, ok := AsBusiness(err); ok {
		msg := be.Detail
		if msg == "" {
			msg = be.Code
		}
		Write(c, StatusFor(err), be.Code, msg)
		return
	}

	if IsExclusionConflict(err) {
		Write(c, http.StatusConflict, CodeSlotConflict, "slot already taken")
		return
	}

	log.Printf("http: internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	Internal(c, "internal_error", "internal error")
}
