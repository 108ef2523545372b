package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every admin API answer uses.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    ErrSuccess,
		Message: GetMessage(ErrSuccess),
		Data:    data,
	})
}

func Fail(c *gin.Context, code int, data interface{}) {
	c.JSON(GetStatus(code), Response{
		Code:    code,
		Message: GetMessage(code),
		Data:    data,
	})
}

func FailWithMessage(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(GetStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Abort answers with code and stops the handler chain.
func Abort(c *gin.Context, code int) {
	Fail(c, code, nil)
	c.Abort()
}
