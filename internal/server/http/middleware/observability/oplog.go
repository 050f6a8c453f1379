package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"go-studioadmin/internal/consumer/oplog"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/mq/kafka"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var skipOpLogPaths = map[string]struct{}{
	"/healthz":               {},
	"/readyz":                {},
	"/metrics":               {},
	"/api/v1/admin/realtime": {},
}

var sensitiveKeys = []string{"password", "passwd", "pwd", "new_password", "old_password", "token", "authorization", "bot_token"}

// OperationLog publishes every admin request (sanitized body, status, latency)
// to the op-log topic; cmd/oplog-consumer stores them in admin_audit_log.
func OperationLog(p *kafka.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawPath := c.Request.URL.Path
		if _, ok := skipOpLogPaths[rawPath]; ok || p == nil {
			c.Next()
			return
		}
		start := time.Now()
		var bodyBytes []byte
		if c.Request.Body != nil {
			b, _ := io.ReadAll(io.LimitReader(c.Request.Body, 4096))
			bodyBytes = b
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(b), c.Request.Body))
		}
		c.Next()

		path := routePath(c)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		e := oplog.Entry{
			ActionName: deriveActionName(path, c.Request.Method),
			Path:       path,
			Method:     c.Request.Method,
			Status:     c.Writer.Status(),
			LatencyMs:  time.Since(start).Milliseconds(),
			IP:         c.ClientIP(),
			UserID:     c.GetInt64("user_id"),
			Time:       time.Now().Format(time.RFC3339),
			Body:       sanitizeJSON(bodyBytes),
			Query:      sanitizeQuery(c.Request.URL.RawQuery),
			TraceID:    c.GetString(TraceIDKey),
		}
		for _, er := range c.Errors {
			e.Errors = append(e.Errors, er.Error())
		}
		if err := p.SendJSON(c.Request.Context(), []byte(e.Path), e, traceHeaders(e.TraceID)); err != nil {
			logging.FromContext(c.Request.Context()).Warn("oplog_send_failed", zap.Error(err))
		}
	}
}

func sanitizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(truncateString(raw, 1024))
	if err != nil {
		return ""
	}
	pairs := make([]string, 0, len(vals))
	for k, v := range vals {
		if len(v) == 0 {
			continue
		}
		val := truncateString(v[0], 100)
		if isSensitive(k) {
			val = "***"
		}
		pairs = append(pairs, k+"="+val)
	}
	sort.Strings(pairs)
	return truncateString(strings.Join(pairs, "&"), 512)
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if lower == s {
			return true
		}
	}
	return false
}

func sanitizeJSON(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	if len(src) > 4096 {
		src = src[:4096]
	}
	var m interface{}
	if json.Unmarshal(src, &m) != nil {
		return string(src)
	}
	sanitizeValue(&m)
	b, err := json.Marshal(m)
	if err != nil {
		return string(src)
	}
	return string(b)
}

func sanitizeValue(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, vv := range val {
			if isSensitive(k) {
				val[k] = "***"
				continue
			}
			sanitizeValue(&vv)
			val[k] = vv
		}
	case []interface{}:
		for i, elem := range val {
			sanitizeValue(&elem)
			val[i] = elem
		}
	}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func deriveActionName(path, method string) string {
	if path == "" {
		return method
	}
	p := strings.Trim(path, "/")
	if p == "" {
		return method
	}
	p = strings.NewReplacer("/", "_", ":", "", "-", "_").Replace(p)
	return strings.ToLower(method + "_" + p)
}
