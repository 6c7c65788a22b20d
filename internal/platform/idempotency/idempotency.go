package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	pending      = "pending:"
	keyPrefix    = "idem:"
	maxKeyLength = 128
	maxBodyBytes = 1 << 20
	ctxSkipKey   = "idempotency_skip_store"
)

type storedResponse struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Cache replays the first response for a repeated Idempotency-Key.
// A nil *Cache is valid and passes every request through.
type Cache struct {
	rdb redis.UniversalClient
	ttl time.Duration
	log *zap.Logger
}

func New(rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// SkipStore は今回のレスポンスを保存せずキーを解放する（再試行させたいエラー用）
func SkipStore(c *gin.Context) { c.Set(ctxSkipKey, true) }

// Middleware scopes keys by scope(c), typically the caller's employee id.
func (m *Cache) Middleware(scope func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderKey)
		if m == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "Idempotency-Key is too long"))
			return
		}

		hash, err := fingerprint(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "request body is unreadable or too large"))
			return
		}

		ctx := c.Request.Context()
		rk := keyPrefix + scope(c) + ":" + key

		reserved, err := m.rdb.SetNX(ctx, rk, pending+hash, m.ttl).Result()
		if err != nil {
			// Redis 障害時は冪等性なしで処理を続ける
			m.log.Warn("idempotency reserve failed", zap.String("key", rk), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			m.replay(c, rk, hash)
			return
		}

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// ハンドラ終了後はリクエストのキャンセルに関係なく確定させる
		bg := context.WithoutCancel(ctx)
		if c.GetBool(ctxSkipKey) || w.Status() >= http.StatusInternalServerError {
			if err := m.rdb.Del(bg, rk).Err(); err != nil {
				m.log.Warn("idempotency release failed", zap.String("key", rk), zap.Error(err))
			}
			return
		}
		buf, err := json.Marshal(storedResponse{Status: w.Status(), Body: w.buf.Bytes(), RequestHash: hash})
		if err == nil {
			err = m.rdb.Set(bg, rk, buf, m.ttl).Err()
		}
		if err != nil {
			m.log.Warn("idempotency store failed", zap.String("key", rk), zap.Error(err))
		}
	}
}

func (m *Cache) replay(c *gin.Context, rk, hash string) {
	val, err := m.rdb.Get(c.Request.Context(), rk).Bytes()
	if err == nil && strings.HasPrefix(string(val), pending) {
		if string(val) != pending+hash {
			keyReused(c)
			return
		}
		// 先行リクエストが処理中
		inProgress(c)
		return
	}
	if errors.Is(err, redis.Nil) {
		// 直前に解放された
		inProgress(c)
		return
	}
	if err != nil {
		m.log.Warn("idempotency lookup failed", zap.String("key", rk), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody("INTERNAL", "idempotency store unavailable"))
		return
	}

	var sr storedResponse
	if err := json.Unmarshal(val, &sr); err != nil {
		m.log.Warn("idempotency payload corrupt", zap.String("key", rk), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL", "stored response is unreadable"))
		return
	}
	if sr.RequestHash != hash {
		keyReused(c)
		return
	}
	c.Header(HeaderReplayed, "true")
	c.Data(sr.Status, "application/json; charset=utf-8", sr.Body)
	c.Abort()
}

// fingerprint はボディの SHA-256。読んだボディはハンドラ用に戻しておく
func fingerprint(r *http.Request) (string, error) {
	if r.Body == nil {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxBodyBytes {
		return "", errors.New("request body too large")
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func inProgress(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, errorBody("REQUEST_IN_PROGRESS", "a request with this Idempotency-Key is still being processed"))
}

// 同じキーで別の内容を送ってきた（例: clock-in のキーで clock-out）
func keyReused(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody("IDEMPOTENCY_KEY_REUSED", "Idempotency-Key was already used for a different request body"))
}

type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func errorBody(code, msg string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": msg}}
}
