package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Config struct {
	Host              string        `envconfig:"HOST"`
	Port              string        `envconfig:"PORT" default:"8080"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"3s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"15s"`
	RequestLogging    bool          `envconfig:"REQUEST_LOGGING" default:"false"`
}

// Controller регистрирует свои маршруты на общем роутере
type Controller interface {
	RegisterRoutes(router *gin.Engine)
}

// NewHTTPServer собирает gin-роутер с общими middleware и возвращает
// сконфигурированный http.Server; запуск остаётся за вызывающим
func NewHTTPServer(cfg *Config, logger *slog.Logger, controllers ...Controller) *http.Server {
	return &http.Server{
		Handler:           newRouter(cfg, logger, controllers),
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

func newRouter(cfg *Config, logger *slog.Logger, controllers []Controller) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middlewares.RecoveryLogger(logger))
	if cfg.RequestLogging {
		router.Use(middlewares.RequestLogger(logger))
	}

	for _, c := range controllers {
		c.RegisterRoutes(router)
	}
	return router
}
