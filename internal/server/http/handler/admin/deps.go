package admin

import (
	"go-studioadmin/internal/config"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/internal/realtime"
	"go-studioadmin/internal/service"
)

// Dependencies is the minimal set the admin handlers need.
type Dependencies struct {
	Resources    *service.Resources
	Auth         *service.AuthService
	Applications *service.ApplicationService
	Support      *service.SupportService
	Dashboard    *service.DashboardService
	Settings     *service.Settings
	Log          *service.LogService
	Hub          *realtime.Hub
	Config       *config.Config
	Cache        cache.Cache
	Logger       *logging.Logger
}
