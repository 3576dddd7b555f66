package admin

import (
	"strconv"

	"github.com/khornSaokhouch/server/internal/constants"
	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, constants.ContextKeyUserID)
}

func getRole(c *gin.Context) string {
	return handlershared.GetContextString(c, constants.ContextKeyUserRole)
}

func isAdmin(c *gin.Context) bool {
	return getRole(c) == constants.UserRoleAdmin
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
