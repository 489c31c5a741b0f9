package handlers

import (
	"socialshop/internal/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindJSON decodes the body into obj; a malformed body is a 400.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperror.BadRequest(err)
	}
	return nil
}

// fail logs unexpected errors under the route tag and writes the envelope.
func fail(c *gin.Context, route string, err error) {
	if apperror.Is(err, apperror.KindInternal) {
		zap.L().Error("["+route+"]", zap.Error(err))
	} else {
		zap.L().Debug("["+route+"]", zap.String("reason", err.Error()))
	}
	apperror.Respond(c, err)
}
