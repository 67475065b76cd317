package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
)

// RecoverMiddleware turns handler panics into a 500 response instead of
// killing the process.
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				xzap.WithContext(c.Request.Context()).Error("handler panic",
					zap.Any("err", err),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
