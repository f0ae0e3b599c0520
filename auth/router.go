package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hoaxify/models"
	"hoaxify/utils"
)

// User is authenticated
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper class that adds auth checks + User pre-loading
type Router struct {
	Base  gin.IRoutes
	Users UserLoader
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	user := LoadSession(c).User(c.Request.Context(), cr.Users)
	if user == nil {
		utils.AbortWithApiError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	handler(c, user)
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}
