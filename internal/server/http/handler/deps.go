package handler

import (
	"go-studioadmin/internal/pkg/resource"
	adminh "go-studioadmin/internal/server/http/handler/admin"
	debugh "go-studioadmin/internal/server/http/handler/debug"
)

// HandlerSet groups the handlers the router mounts.
type HandlerSet struct {
	Resources    []resource.Routable
	Auth         *adminh.AuthHandler
	Applications *adminh.ApplicationHandler
	Support      *adminh.SupportHandler
	Dashboard    *adminh.DashboardHandler
	Settings     *adminh.SettingsHandler
	Upload       *adminh.UploadHandler
	Log          *adminh.LogHandler
	Cache        *adminh.CacheHandler
	Realtime     *adminh.RealtimeHandler
	Debug        *debugh.Handler
}

func NewHandlerSet(ad adminh.Dependencies, dbg debugh.Dependencies) *HandlerSet {
	return &HandlerSet{
		Resources:    ad.Resources.Routables(),
		Auth:         adminh.NewAuthHandler(ad),
		Applications: adminh.NewApplicationHandler(ad),
		Support:      adminh.NewSupportHandler(ad),
		Dashboard:    adminh.NewDashboardHandler(ad),
		Settings:     adminh.NewSettingsHandler(ad),
		Upload:       adminh.NewUploadHandler(ad),
		Log:          adminh.NewLogHandler(ad),
		Cache:        adminh.NewCacheHandler(ad),
		Realtime:     adminh.NewRealtimeHandler(ad),
		Debug:        debugh.New(dbg),
	}
}
