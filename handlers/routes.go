package handlers

import (
	"github.com/gin-gonic/gin"

	"hoaxify/auth"
)

const apiPrefix = "/api/1.0"

func RegisterRoutes(router gin.IRouter, users auth.UserLoader, hoaxes *HoaxHandlers, hub *Hub) {
	api := router.Group(apiPrefix)
	authAPI := &auth.Router{Base: api, Users: users}

	authAPI.POST("/hoaxes", hoaxes.Create)
	authAPI.POST("/hoaxes/upload", hoaxes.Upload)
	api.GET("/hoaxes", hoaxes.List)
	api.GET("/hoaxes/:id", hoaxes.Relative)
	api.GET("/users/:username/hoaxes", hoaxes.ListForUser)
	api.GET("/users/:username/hoaxes/:id", hoaxes.RelativeForUser)
	authAPI.GET("/ws/hoaxes", hub.WebSocket)
}
