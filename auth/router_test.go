package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoaxify/db/dbtest"
	"hoaxify/models"
	"hoaxify/store"
	"hoaxify/utils"
)

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	alice := dbtest.CreateUser(t, db, "alice")

	router := gin.New()
	router.Use(sessions.Sessions("token", cookie.NewStore([]byte("secret"))))
	router.GET("/login/:id", func(c *gin.Context) {
		id := utils.StringToUInt64Ptr(c.Param("id"))
		require.NoError(t, LoadSession(c).LoginUser(*id))
		c.Status(http.StatusNoContent)
	})
	authRouter := &Router{Base: router, Users: store.New(db).Users}
	authRouter.GET("/me", func(c *gin.Context, user *models.User) {
		c.String(http.StatusOK, user.Username)
	})

	login := func(id string) []*http.Cookie {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
		return w.Result().Cookies()
	}

	tests := []struct {
		name       string
		cookies    []*http.Cookie
		wantStatus int
		wantBody   string
	}{
		{"anonymous", nil, http.StatusUnauthorized, ""},
		{"logged in", login("1"), http.StatusOK, "alice"},
		{"deleted user", login("999"), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}
			apiError := utils.ApiError{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiError))
			assert.Equal(t, http.StatusUnauthorized, apiError.Status)
			assert.Equal(t, "/me", apiError.URL)
		})
	}
	assert.Equal(t, uint64(1), alice.ID)
}
