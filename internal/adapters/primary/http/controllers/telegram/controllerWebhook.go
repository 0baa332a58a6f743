package telegram

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	telegramService "github.com/admin/tg-bots/shop-bot/internal/services/telegram"
	"github.com/gin-gonic/gin"
)

// Controller принимает апдейты Telegram, когда бот работает в webhook-режиме
type Controller struct {
	updates *telegramService.Service
	secret  string
	log     *slog.Logger
}

func New(updates *telegramService.Service, secret string, log *slog.Logger) *Controller {
	return &Controller{
		updates: updates,
		secret:  secret,
		log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook", c.receiveUpdate)
}

func (c *Controller) receiveUpdate(ctx *gin.Context) {
	// Telegram повторяет секрет из setWebhook в этом заголовке
	token := ctx.GetHeader("X-Telegram-Bot-Api-Secret-Token")
	if c.secret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.secret)) != 1 {
		c.log.Warn("webhook secret mismatch", "client_ip", ctx.ClientIP())
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
		return
	}

	var update domain.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.log.Error("webhook update rejected", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.log.Debug("webhook update received", "update_id", update.UpdateID)

	if err := c.updates.HandleUpdate(ctx.Request.Context(), &update); err != nil {
		c.log.Error("update processing failed",
			"error", err,
			"update_id", update.UpdateID,
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process update"})
		return
	}

	// Telegram ждёт 200, иначе повторит доставку
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
