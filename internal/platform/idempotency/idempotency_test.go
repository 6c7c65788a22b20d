package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type CacheSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	router *gin.Engine
	calls  int
	status int
	skip   bool
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mr = miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	cache := New(rdb, time.Hour, zap.NewNop())

	s.calls, s.status, s.skip = 0, http.StatusOK, false
	s.router = gin.New()
	s.router.POST("/attendance", cache.Middleware(func(c *gin.Context) string { return c.GetHeader("X-Employee") }), func(c *gin.Context) {
		s.calls++
		if s.skip {
			SkipStore(c)
		}
		c.JSON(s.status, gin.H{"call": s.calls})
	})
}

func (s *CacheSuite) post(key, employee string) *httptest.ResponseRecorder {
	return s.postBody(key, employee, "")
}

func (s *CacheSuite) postBody(key, employee, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/attendance", strings.NewReader(body))
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	req.Header.Set("X-Employee", employee)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CacheSuite) TestReplaysFirstResponse() {
	first := s.post("k1", "E001")
	s.Equal(http.StatusOK, first.Code)
	s.JSONEq(`{"call":1}`, first.Body.String())

	second := s.post("k1", "E001")
	s.Equal(http.StatusOK, second.Code)
	s.JSONEq(`{"call":1}`, second.Body.String())
	s.Equal("true", second.Header().Get(HeaderReplayed))
	s.Equal(1, s.calls)
}

func (s *CacheSuite) TestKeysAreScopedPerEmployee() {
	s.post("k1", "E001")
	rec := s.post("k1", "E002")
	s.JSONEq(`{"call":2}`, rec.Body.String())
	s.Equal(2, s.calls)
}

func (s *CacheSuite) TestWithoutKeyAlwaysExecutes() {
	s.post("", "E001")
	s.post("", "E001")
	s.Equal(2, s.calls)
}

func (s *CacheSuite) TestPendingKeyConflicts() {
	s.Require().NoError(s.mr.Set(keyPrefix+"E001:k1", pending+bodyHash("")))

	rec := s.post("k1", "E001")
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "REQUEST_IN_PROGRESS")
	s.Equal(0, s.calls)
}

func (s *CacheSuite) TestSameBodyReplays() {
	s.postBody("k1", "E001", `{"action":"clock-in"}`)
	rec := s.postBody("k1", "E001", `{"action":"clock-in"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("true", rec.Header().Get(HeaderReplayed))
	s.Equal(1, s.calls)
}

func (s *CacheSuite) TestReusedKeyWithDifferentBodyIsRejected() {
	first := s.postBody("k1", "E001", `{"action":"clock-in"}`)
	s.JSONEq(`{"call":1}`, first.Body.String())

	second := s.postBody("k1", "E001", `{"action":"clock-out"}`)
	s.Equal(http.StatusUnprocessableEntity, second.Code)
	s.Contains(second.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	s.Empty(second.Header().Get(HeaderReplayed))
	s.Equal(1, s.calls)
}

func (s *CacheSuite) TestReusedKeyWhilePendingIsRejected() {
	s.Require().NoError(s.mr.Set(keyPrefix+"E001:k1", pending+bodyHash(`{"action":"clock-in"}`)))

	rec := s.postBody("k1", "E001", `{"action":"clock-out"}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	s.Equal(0, s.calls)
}

func (s *CacheSuite) TestHandlerStillReadsTheBody() {
	s.router.POST("/echo", New(redis.NewClient(&redis.Options{Addr: s.mr.Addr()}), time.Hour, zap.NewNop()).
		Middleware(func(*gin.Context) string { return "E001" }), func(c *gin.Context) {
		var req struct {
			Action string `json:"action"`
		}
		s.Require().NoError(c.ShouldBindJSON(&req))
		c.JSON(http.StatusOK, gin.H{"handled": req.Action})
	})
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"action":"clock-out"}`))
	req.Header.Set(HeaderKey, "k9")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.JSONEq(`{"handled":"clock-out"}`, rec.Body.String())
}

func (s *CacheSuite) TestServerErrorsReleaseTheKey() {
	s.status = http.StatusInternalServerError
	s.post("k1", "E001")
	s.False(s.mr.Exists(keyPrefix + "E001:k1"))

	s.status = http.StatusOK
	rec := s.post("k1", "E001")
	s.JSONEq(`{"call":2}`, rec.Body.String())
}

func (s *CacheSuite) TestSkipStoreReleasesTheKey() {
	s.skip, s.status = true, http.StatusConflict
	s.post("k1", "E001")
	s.False(s.mr.Exists(keyPrefix + "E001:k1"))
}

func (s *CacheSuite) TestStoredWithTTL() {
	s.post("k1", "E001")
	s.Equal(time.Hour, s.mr.TTL(keyPrefix+"E001:k1"))
}

func TestNilCachePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var cache *Cache
	r := gin.New()
	r.POST("/x", cache.Middleware(func(*gin.Context) string { return "" }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(HeaderKey, "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRedisDownFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	cache := New(rdb, time.Hour, zap.NewNop())
	r := gin.New()
	r.POST("/x", cache.Middleware(func(*gin.Context) string { return "E" }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(HeaderKey, "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func bodyHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
