package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1
)

// CacheRouter sets cache-control on every response it handles. Timelines
// change with every new hoax, so the API runs with CacheNoCache.
type CacheRouter struct {
	CacheTime int // seconds, or one of the Cache* constants
}

func (cr *CacheRouter) header() string {
	if cr.CacheTime == CacheNoCache {
		return "no-cache"
	}
	return "private, max-age=" + strconv.Itoa(cr.CacheTime)
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	if cr.CacheTime == CacheCustom {
		return func(c *gin.Context) { c.Next() }
	}
	value := cr.header()
	return func(c *gin.Context) {
		c.Header("cache-control", value)
		c.Next()
	}
}
