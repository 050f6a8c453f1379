package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/internal/realtime"
	redisrepo "go-studioadmin/internal/repository/redis"
	"go-studioadmin/internal/security/jwt"
	handlerset "go-studioadmin/internal/server/http/handler"
	adminh "go-studioadmin/internal/server/http/handler/admin"
	debugh "go-studioadmin/internal/server/http/handler/debug"
	"go-studioadmin/internal/service"
	"go-studioadmin/internal/testutil"
	"go-studioadmin/internal/util/retcode"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bridgeSecret = "bridge-secret-0123456789"

type studioEnv struct {
	router *gin.Engine
	jwt    *jwt.Manager
	redis  *miniredis.Miniredis
	hub    *realtime.Hub
}

func newStudioEnv(t *testing.T) *studioEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.HTTP.Addr = ":0"
	cfg.JWT.Secret, cfg.JWT.ExpireSeconds, cfg.JWT.Issuer = "0123456789abcdef", 3600, "studio-admin"
	cfg.Redis.JTIPrefix = "jwt:jti:"
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxSizeMB = 1
	cfg.Upload.AllowedExt = []string{"jpg", "png"}
	cfg.Support.BridgeSecret = bridgeSecret

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rc := redisrepo.Wrap(rdb)

	lg := logging.Nop()
	db := testutil.DB(t)
	j := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpireSeconds, cfg.JWT.Issuer)
	c := cache.NewLayered(cache.NewMemory(time.Minute), nil)
	res := service.NewResources(db, c, service.Options{ListTTL: time.Minute})
	auth := service.NewAuthService(res, j, rc, cfg.Redis.JTIPrefix)
	_, err := auth.EnsureBootstrapAdmin(ctx, "admin@studio.test", "changeme")
	require.NoError(t, err)

	hub := realtime.NewHub(realtime.HubOptions{}, lg)
	t.Cleanup(hub.Close)
	broker := realtime.NewBroker(hub, nil, "", lg)

	h := handlerset.NewHandlerSet(adminh.Dependencies{
		Resources:    res,
		Auth:         auth,
		Applications: service.NewApplicationService(res),
		Support:      service.NewSupportService(res, broker),
		Dashboard:    service.NewDashboardService(res),
		Settings:     service.NewSettings(res),
		Log:          service.NewLogService(db, c),
		Hub:          hub,
		Config:       cfg,
		Cache:        c,
		Logger:       lg,
	}, debugh.Dependencies{Config: cfg, Logger: lg})

	r := NewRouter(Infra{Config: cfg, Logger: lg, JWT: j, DB: db, Redis: rc}, h)
	return &studioEnv{router: r, jwt: j, redis: mr, hub: hub}
}

type reply struct {
	OK       bool            `json:"ok"`
	Code     int             `json:"code"`
	Error    string          `json:"error"`
	Item     json.RawMessage `json:"item"`
	Items    json.RawMessage `json:"items"`
	Assigned *int            `json:"assigned"`
	URL      string          `json:"url"`
}

func (e *studioEnv) do(t *testing.T, method, path, token string, body any) (int, reply) {
	t.Helper()
	return e.doWith(t, method, path, token, nil, body)
}

func (e *studioEnv) doWith(t *testing.T, method, path, token string, header map[string]string, body any) (int, reply) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var out reply
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (e *studioEnv) login(t *testing.T) string {
	t.Helper()
	status, out := e.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "admin@studio.test", "password": "changeme"})
	require.Equal(t, 200, status, out.Error)
	var item struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(out.Item, &item))
	require.NotEmpty(t, item.Token)
	return item.Token
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	env := newStudioEnv(t)

	status, _ := env.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, 200, status)

	req := httptest.NewRequest("GET", "/readyz?refresh=1", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	var ready map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready["status"])
	assert.Equal(t, "up", ready["db"])
	assert.Equal(t, "up", ready["redis"])
	assert.Equal(t, "disabled", ready["kafka"])

	status, out := env.do(t, "GET", "/nope", "", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, retcode.NOT_EXISTS, out.Code)
}

func TestRouter_AuthGuards(t *testing.T) {
	env := newStudioEnv(t)

	status, out := env.do(t, "GET", "/api/v1/admin/groups", "", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.AUTH_ERROR, out.Code)

	status, out = env.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": "admin@studio.test", "password": "bad"})
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.LOGIN_ERROR, out.Code)

	studentTok, err := env.jwt.Generate(50, model.RoleStudent, "student-jti")
	require.NoError(t, err)
	require.NoError(t, env.redis.Set("jwt:jti:student-jti", "50"))
	status, out = env.do(t, "GET", "/api/v1/admin/groups", studentTok, nil)
	assert.Equal(t, 403, status)
	assert.Equal(t, retcode.FORBIDDEN, out.Code)

	managerTok, err := env.jwt.Generate(51, model.RoleManager, "manager-jti")
	require.NoError(t, err)
	require.NoError(t, env.redis.Set("jwt:jti:manager-jti", "51"))
	status, _ = env.do(t, "GET", "/api/v1/admin/groups", managerTok, nil)
	assert.Equal(t, 200, status)
	status, _ = env.do(t, "GET", "/api/v1/admin/cache/metrics", managerTok, nil)
	assert.Equal(t, 403, status, "cache metrics are admin only")

	token := env.login(t)
	status, _ = env.do(t, "GET", "/api/v1/admin/cache/metrics", token, nil)
	assert.Equal(t, 200, status)
	status, out = env.do(t, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, 200, status)
	assert.Contains(t, string(out.Item), "admin@studio.test")
	assert.NotContains(t, string(out.Item), "password")

	status, _ = env.do(t, "POST", "/api/v1/auth/logout", token, nil)
	assert.Equal(t, 200, status)
	status, out = env.do(t, "GET", "/api/v1/admin/groups", token, nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.TOKEN_TIMEOUT, out.Code)
}

func TestRouter_GroupsAndApplications(t *testing.T) {
	env := newStudioEnv(t)
	token := env.login(t)

	status, out := env.do(t, "POST", "/api/v1/admin/groups", token, map[string]any{
		"name": "Hip-Hop Kids", "style": "Hip-Hop", "level": "Beginner", "max_students": 15, "is_active": true,
	})
	require.Equal(t, 200, status, out.Error)
	var g model.Group
	require.NoError(t, json.Unmarshal(out.Item, &g))
	assert.NotZero(t, g.ID)

	status, out = env.do(t, "GET", "/api/v1/admin/groups", token, nil)
	require.Equal(t, 200, status)
	var groups []model.Group
	require.NoError(t, json.Unmarshal(out.Items, &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "Hip-Hop Kids", groups[0].Name)
	assert.Equal(t, "Beginner", groups[0].Level)
	assert.Equal(t, 15, groups[0].MaxStudents)

	status, _ = env.do(t, "POST", "/api/trial", "", map[string]any{"name": "Маша", "phone": "+79990000000", "style": "hip-hop", "age": 8})
	require.Equal(t, 200, status)
	status, out = env.do(t, "POST", "/api/trial", "", map[string]any{"name": "", "phone": ""})
	assert.Equal(t, 422, status)
	assert.False(t, out.OK)

	status, out = env.do(t, "POST", "/api/v1/admin/applications/auto-assign-all", token, nil)
	require.Equal(t, 200, status, out.Error)
	require.NotNil(t, out.Assigned)
	assert.Equal(t, 1, *out.Assigned)

	status, out = env.do(t, "GET", "/api/v1/admin/applications", token, nil)
	require.Equal(t, 200, status)
	var apps []model.Application
	require.NoError(t, json.Unmarshal(out.Items, &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, model.ApplicationAssigned, apps[0].Status)
	assert.Equal(t, "Hip-Hop Kids", *apps[0].AssignedGroupName)

	status, out = env.do(t, "POST", "/api/v1/admin/applications/"+strconv.FormatInt(apps[0].ID, 10)+"/auto-assign", token, nil)
	assert.Equal(t, 200, status, out.Error)

	status, out = env.do(t, "GET", "/api/v1/admin/dashboard", token, nil)
	require.Equal(t, 200, status)
	var stats []service.Stat
	require.NoError(t, json.Unmarshal(out.Items, &stats))
	assert.Equal(t, "applications_new", stats[0].Key)
}

func TestRouter_SupportPushAndReply(t *testing.T) {
	env := newStudioEnv(t)
	token := env.login(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/realtime?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/admin/realtime", nil)
	assert.Error(t, err, "push channel requires a token")

	status, out := env.do(t, "POST", "/api/v1/support/messages", "", map[string]any{"user_name": "Ира", "body": "Здравствуйте"})
	require.Equal(t, 200, status, out.Error)
	var msg model.SupportMessage
	require.NoError(t, json.Unmarshal(out.Item, &msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f realtime.Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, realtime.SupportChannel, f.Channel)
	assert.Equal(t, realtime.SupportMessageEvent, f.Event)
	var ev realtime.SupportMessage
	require.NoError(t, json.Unmarshal(f.Data, &ev))
	assert.Equal(t, msg.ConversationID, ev.Conversation.ID)
	assert.Equal(t, msg.ID, ev.Message.ID)

	path := "/api/v1/admin/support/conversations/" + strconv.FormatInt(msg.ConversationID, 10) + "/messages"
	status, out = env.do(t, "POST", path, token, map[string]string{"body": "Добрый день"})
	require.Equal(t, 200, status, out.Error)
	status, out = env.do(t, "POST", path, token, map[string]string{})
	assert.Equal(t, 422, status)

	status, out = env.do(t, "GET", path, token, nil)
	require.Equal(t, 200, status)
	var msgs []model.SupportMessage
	require.NoError(t, json.Unmarshal(out.Items, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderAdmin, msgs[1].SenderType)
}

func TestRouter_SupportInboundBridgeGuard(t *testing.T) {
	env := newStudioEnv(t)
	const path = "/api/v1/support/messages"

	status, out := env.do(t, "POST", path, "", map[string]any{"body": "Здравствуйте"})
	require.Equal(t, 200, status, out.Error)
	var opened model.SupportMessage
	require.NoError(t, json.Unmarshal(out.Item, &opened))

	status, out = env.do(t, "POST", path, "", map[string]any{"conversation_id": opened.ConversationID, "body": "чужой диалог"})
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.AUTH_ERROR, out.Code)

	status, out = env.do(t, "POST", path, "", map[string]any{"user_id": 1, "body": "от имени админа"})
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.AUTH_ERROR, out.Code)

	wrong := map[string]string{"X-Bridge-Secret": "not-the-secret-at-all"}
	status, out = env.doWith(t, "POST", path, "", wrong, map[string]any{"body": "привет"})
	assert.Equal(t, 401, status)
	assert.Equal(t, retcode.AUTH_ERROR, out.Code)

	bridge := map[string]string{"X-Bridge-Secret": bridgeSecret}
	uid := int64(42)
	status, out = env.doWith(t, "POST", path, "", bridge, map[string]any{
		"conversation_id": opened.ConversationID, "user_id": uid, "body": "из телеграма", "source": "telegram",
	})
	require.Equal(t, 200, status, out.Error)
	var msg model.SupportMessage
	require.NoError(t, json.Unmarshal(out.Item, &msg))
	assert.Equal(t, opened.ConversationID, msg.ConversationID)
	require.NotNil(t, msg.SenderID)
	assert.Equal(t, uid, *msg.SenderID)
}

func TestRouter_SettingsAndUpload(t *testing.T) {
	env := newStudioEnv(t)
	token := env.login(t)

	status, out := env.do(t, "GET", "/api/v1/admin/blog/settings", token, nil)
	require.Equal(t, 200, status)
	assert.Contains(t, string(out.Item), `"posts_per_page":9`)

	status, out = env.do(t, "PATCH", "/api/v1/admin/blog/settings", token, map[string]any{"posts_per_page": 12})
	require.Equal(t, 200, status, out.Error)
	assert.Contains(t, string(out.Item), `"posts_per_page":12`)
	status, _ = env.do(t, "PATCH", "/api/v1/admin/blog/settings", token, map[string]any{"posts_per_page": 0})
	assert.Equal(t, 422, status)

	status, out = env.do(t, "PATCH", "/api/v1/admin/settings/telegram", token, map[string]any{"chat_id": "-100500"})
	require.Equal(t, 200, status, out.Error)
	assert.Contains(t, string(out.Item), `"chat_id":"-100500"`)

	upload := func(name string) (int, reply) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("\x89PNG fake image"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest("POST", "/api/v1/admin/gallery/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		var out reply
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w.Code, out
	}
	status, out = upload("photo.PNG")
	require.Equal(t, 200, status, out.Error)
	assert.True(t, strings.HasSuffix(out.URL, ".png"))

	status, out = upload("script.exe")
	assert.Equal(t, 422, status)
	assert.Equal(t, retcode.PARAM_INVALID, out.Code)

	status, _ = env.do(t, "GET", "/api/v1/admin/audit-log", token, nil)
	assert.Equal(t, 200, status)
}

func TestHealthChecker_RequiredDBMissing(t *testing.T) {
	hc := NewHealthChecker(nil, nil, nil, nil)
	res, code := hc.Readiness(context.Background())
	assert.Equal(t, nethttp.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", res["status"])
	assert.Equal(t, "not configured", res["db"])
	assert.Equal(t, "disabled", res["redis"])

	res2, _ := hc.Readiness(context.Background())
	assert.Equal(t, res["time"], res2["time"], "verdict is cached")
}
