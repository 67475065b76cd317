package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/errcode"
)

// Response is the uniform API envelope.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson writes a success envelope.
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.CodeOK,
		Msg:  "success",
		Data: data,
	})
}

// Error writes a failure envelope. Coded errors keep their code; everything
// else is reported as unexpected.
func Error(c *gin.Context, err error) {
	var coded *errcode.Err
	if errors.As(err, &coded) {
		c.JSON(http.StatusOK, Response{Code: coded.Code, Msg: coded.Msg})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code: errcode.CodeUnexpected,
		Msg:  err.Error(),
	})
}
