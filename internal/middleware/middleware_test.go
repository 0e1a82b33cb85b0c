package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/field-task-api/internal/access"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/models"
	"github.com/yukikurage/field-task-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveToken(ctx context.Context, raw string) (access.Principal, error) {
	args := m.Called(raw)
	return args.Get(0).(access.Principal), args.Error(1)
}

func (m *mockResolver) ResolveBearer(ctx context.Context, token string) (access.Principal, error) {
	args := m.Called(token)
	return args.Get(0).(access.Principal), args.Error(1)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireIDParams(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id/photos/:photo_id", RequireIDParams("id", "photo_id"), func(c *gin.Context) {
		id, _ := GetID(c, "id")
		photoID, _ := GetID(c, "photo_id")
		c.JSON(http.StatusOK, gin.H{"id": id, "photo_id": photoID})
	})

	tests := []struct {
		name string
		path string
		code int
	}{
		{"valid", "/items/4/photos/9", http.StatusOK},
		{"non numeric", "/items/abc/photos/9", http.StatusBadRequest},
		{"zero", "/items/4/photos/0", http.StatusBadRequest},
		{"negative", "/items/-1/photos/2", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/items/4/photos/9", nil))
	assert.JSONEq(t, `{"id":4,"photo_id":9}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	l, err := NewLoginLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", RateLimit(l), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")

	_, err = NewLoginLimiter("lots")
	assert.Error(t, err)
}

func authRouter(resolver PrincipalResolver, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	r.GET("/login", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(constants.SessionKeyToken, "web-token")
		_ = s.Save()
		c.Status(http.StatusOK)
	})

	chain := append([]gin.HandlerFunc{RequireAuth(resolver)}, guards...)
	chain = append(chain, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/me", chain...)
	return r
}

func TestRequireAuthBearer(t *testing.T) {
	resolver := new(mockResolver)
	tech := access.Principal{UserID: 7, CompanyID: 1, Username: "tech", Role: models.RoleUser}
	resolver.On("ResolveBearer", "good").Return(tech, nil)
	resolver.On("ResolveBearer", "stale").Return(access.Principal{}, services.ErrSessionInvalid)

	r := authRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"tech"`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer stale")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	resolver.AssertExpectations(t)
	resolver.AssertNotCalled(t, "ResolveToken", mock.Anything)
}

func TestRequireAuthSession(t *testing.T) {
	resolver := new(mockResolver)
	admin := access.Principal{UserID: 1, CompanyID: 1, Username: "manager", Role: models.RoleAdmin}
	resolver.On("ResolveToken", "web-token").Return(admin, nil)

	r := authRouter(resolver, RequireAdmin())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestRoleGuards(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("ResolveBearer", "tech").Return(access.Principal{UserID: 7, CompanyID: 1, Role: models.RoleUser}, nil)
	resolver.On("ResolveBearer", "admin").Return(access.Principal{UserID: 1, CompanyID: 1, Role: models.RoleAdmin}, nil)

	tests := []struct {
		name  string
		guard gin.HandlerFunc
		token string
		code  int
	}{
		{"admin route as user", RequireAdmin(), "tech", http.StatusForbidden},
		{"admin route as admin", RequireAdmin(), "admin", http.StatusOK},
		{"super-admin route as admin", RequireSuperAdmin(), "admin", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(resolver, tt.guard)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := serve(r, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
