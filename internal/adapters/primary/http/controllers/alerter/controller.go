package alerter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
	"github.com/gin-gonic/gin"
)

// Controller принимает алерты снаружи по HTTP и пересылает их в служебный чат
type Controller struct {
	alerts service.IAlerterService
	log    *slog.Logger
}

func New(alerts service.IAlerterService, log *slog.Logger) *Controller {
	return &Controller{
		alerts: alerts,
		log:    log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	hooks := router.Group("/webhooks")
	hooks.POST("/railway", c.railwayDeploy)
	hooks.POST("/alert", c.externalAlert)
}

// railwayDeploy превращает деплой-событие Railway в сообщение алерт-чата
func (c *Controller) railwayDeploy(ctx *gin.Context) {
	var event RailwayEvent
	if err := ctx.ShouldBindJSON(&event); err != nil {
		c.log.Warn("railway webhook rejected", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.log.Debug("railway deploy event",
		"type", event.Type,
		"service", event.Resource.Service.Name,
		"status", event.Details.Status,
	)

	c.forward(ctx, deployAlertText(event), "type", event.Type)
}

// externalAlert принимает алерт в свободной форме от внешних систем
func (c *Controller) externalAlert(ctx *gin.Context) {
	var req AlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.log.Warn("alert request rejected", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	text := req.Message
	if req.Source != "" {
		text = fmt.Sprintf("🔔 %s\n\n%s", req.Source, req.Message)
	}

	c.forward(ctx, text, "source", req.Source)
}

// forward шлёт текст в алерт-чат. Внешним системам всегда отвечаем 200,
// иначе Railway начинает ретраить хук
func (c *Controller) forward(ctx *gin.Context, text string, attrs ...any) {
	if c.alerts == nil {
		c.log.Info("alert chat is not configured, alert dropped", attrs...)
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "message": "alerter not configured"})
		return
	}

	if err := c.alerts.SendAlert(ctx.Request.Context(), text); err != nil {
		c.log.Warn("alert dispatch failed", append(attrs, "error", err)...)
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "error": "failed to send alert"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// deployAlertText собирает деплой-событие в человекочитаемую сводку
func deployAlertText(e RailwayEvent) string {
	head := "🚨 " + eventTitle(e.Type)
	if e.Severity != "" {
		head += " [" + e.Severity + "]"
	}

	project := "📦 " + e.Resource.Project.Name
	if svc := e.Resource.Service.Name; svc != "" {
		project += " / " + svc
	}

	lines := []string{head, "", project}

	if env := e.Resource.Environment; env.Name != "" {
		line := "🌍 Окружение: " + env.Name
		if env.IsEphemeral {
			line += " (ephemeral)"
		}
		lines = append(lines, line)
	}

	if e.Details.Status != "" {
		lines = append(lines, "📊 Статус: "+deployStatus(e.Details.Status))
	}
	if e.Details.Branch != "" {
		lines = append(lines, "🌿 Ветка: "+e.Details.Branch)
	}
	if hash := e.Details.CommitHash; hash != "" {
		if len(hash) > 7 {
			hash = hash[:7]
		}
		commit := "🔹 Коммит: " + hash
		if e.Details.CommitAuthor != "" {
			commit += " (" + e.Details.CommitAuthor + ")"
		}
		lines = append(lines, commit)
	}
	if msg := e.Details.CommitMessage; msg != "" {
		if len(msg) > 100 {
			msg = msg[:100] + "..."
		}
		lines = append(lines, "💬 Сообщение: "+msg)
	}
	if e.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			lines = append(lines, "⏰ Время: "+ts.Format("02.01.2006 15:04:05"))
		}
	}

	return strings.Join(lines, "\n")
}

// eventTitle "deployment.failed" -> "Deployment Failed"
func eventTitle(event string) string {
	words := strings.Split(event, ".")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

var deployStatusEmoji = map[string]string{
	"SUCCESS":   "✅",
	"FAILED":    "❌",
	"BUILDING":  "🔨",
	"DEPLOYING": "🚀",
	"INACTIVE":  "💤",
}

// deployStatus дополняет статус деплоя эмодзи, незнакомые статусы идут как есть
func deployStatus(status string) string {
	up := strings.ToUpper(status)
	emoji, ok := deployStatusEmoji[up]
	if !ok {
		return status
	}
	return emoji + " " + up
}
