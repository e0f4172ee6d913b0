package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestActor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got domain.Actor
	r := gin.New()
	r.Use(Actor())
	r.GET("/", func(c *gin.Context) {
		got = ActorFrom(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "12")
	req.Header.Set(HeaderUserName, "Ana")
	req.Header.Set(HeaderUserGroups, "comprador, analista,")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, int64(12), got.ID)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, []string{"comprador", "analista"}, got.Groups)

	req = httptest.NewRequest(http.MethodGet, "/?user=7", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int64(7), got.ID)
	assert.Empty(t, got.Groups)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int64(0), got.ID)
}
