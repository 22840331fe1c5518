package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError resolves status and code from err. Messages of 5xx errors are
// not echoed to the client.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	status, code := apierr.StatusOf(err, fallbackCode)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: http.StatusText(status), Code: code}})
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondAccepted is used when the response reflects state that is still being persisted.
func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}
