package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/study-partner/internal/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func whoami(c *gin.Context) {
	id, ok := GetIdentity(c)
	ctxID, _ := auth.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"email": id.Email, "ok": ok, "ctx": ctxID.Email})
}

func newEngine(verifier auth.Verifier, insecure bool) *gin.Engine {
	r := gin.New()
	r.Use(Identity(verifier, insecure))
	r.GET("/open", whoami)
	r.GET("/closed", RequireIdentity(insecure), whoami)
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityFromBearer(t *testing.T) {
	r := newEngine(auth.NewJWTVerifier("secret"), false)
	token, err := auth.Sign("secret", auth.Identity{Email: "a@x.com"}, time.Hour)
	assert.NoError(t, err)

	w := do(r, "/closed", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@x.com","ok":true,"ctx":"a@x.com"}`, w.Body.String())

	w = do(r, "/open", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHeaderIdentityIgnoredOutsideInsecureMode(t *testing.T) {
	r := newEngine(auth.NewJWTVerifier("secret"), false)

	w := do(r, "/open", map[string]string{HeaderUserEmail: "a@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"","ok":false,"ctx":""}`, w.Body.String())

	w = do(r, "/closed", map[string]string{HeaderUserEmail: "a@x.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInsecureHeaderIdentity(t *testing.T) {
	r := newEngine(nil, true)

	w := do(r, "/closed", map[string]string{HeaderUserEmail: "a@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@x.com","ok":true,"ctx":"a@x.com"}`, w.Body.String())

	w = do(r, "/closed", nil)
	assert.Equal(t, http.StatusOK, w.Code, "body identity may still be supplied")

	w = do(r, "/open", map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no verifier configured")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, "/x", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, "/x", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	all := gin.New()
	all.Use(CORS([]string{"*"}))
	all.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(all, "/x", map[string]string{"Origin": "http://anywhere.test"})
	assert.Equal(t, "http://anywhere.test", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.001, 2))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "/x", nil).Code)
	w := do(r, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Metrics(), Logger())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
