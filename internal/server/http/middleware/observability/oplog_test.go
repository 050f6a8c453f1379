package observability

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"go-studioadmin/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSONMasksNestedSecrets(t *testing.T) {
	got := sanitizeJSON([]byte(`{"name":"Анна","password":"secret","settings":{"bot_token":"123:abc"},"items":[{"Token":"x"}]}`))
	assert.JSONEq(t, `{"name":"Анна","password":"***","settings":{"bot_token":"***"},"items":[{"Token":"***"}]}`, got)

	assert.Equal(t, "", sanitizeJSON(nil))
	assert.Equal(t, "not json", sanitizeJSON([]byte("not json")))
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "page=2&token=***", sanitizeQuery("token=abc&page=2"))
	assert.Equal(t, "", sanitizeQuery(""))
}

func TestDeriveActionName(t *testing.T) {
	cases := []struct {
		path, method, want string
	}{
		{"/api/v1/admin/groups/:id", "PATCH", "patch_api_v1_admin_groups_id"},
		{"/api/v1/admin/applications/auto-assign-all", "POST", "post_api_v1_admin_applications_auto_assign_all"},
		{"/", "GET", "GET"},
		{"", "DELETE", "DELETE"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, deriveActionName(tc.path, tc.method), tc.path)
	}
}

func TestOperationLogWithoutProducerKeepsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen []byte
	r.POST("/groups", OperationLog(nil), func(c *gin.Context) {
		seen, _ = io.ReadAll(c.Request.Body)
		c.Status(204)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/groups", bytes.NewBufferString(`{"name":"Jazz"}`)))
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, `{"name":"Jazz"}`, string(seen))
}

func TestTraceAndLoggerContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), LoggerContextMiddleware(logging.Nop()), Metrics())
	var traceID any
	r.GET("/ping", func(c *gin.Context) {
		traceID = c.Request.Context().Value(logging.TraceIDKey)
		require.NotNil(t, logging.FromContext(c.Request.Context()))
		c.Status(200)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Trace-Id"))
	assert.Equal(t, "trace-123", traceID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
}
