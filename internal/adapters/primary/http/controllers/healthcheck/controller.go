package healthcheckController

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthCheckController liveness и readiness пробы для оркестратора
type HealthCheckController struct {
	db  *sqlx.DB
	log *slog.Logger
}

func New(db *sqlx.DB, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{db: db, log: log}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.liveness)
	r.GET("/ready", c.readiness)
}

// liveness процесс жив, всегда 200
func (c *HealthCheckController) liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "service": "shop-bot"})
}

// readiness без живой БД магазин не обслуживает запросы
func (c *HealthCheckController) readiness(ctx *gin.Context) {
	if err := c.db.PingContext(ctx.Request.Context()); err != nil {
		c.log.Error("readiness probe failed", "error", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
