package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/turma-apps/turma-web/internal/middleware"
	"github.com/turma-apps/turma-web/internal/models"
)

func sessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(middleware.ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func upstreamToken(c *gin.Context) string {
	if session := sessionFromContext(c); session != nil {
		return session.UpstreamToken
	}
	return ""
}
