package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-shop-admin/internal/core/auth"
	"go-shop-admin/internal/core/server"
	mdw "go-shop-admin/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎。分组只要求登录；
// 角色限制由各动作的 Roles 和用户目录内部的 IsAdmin 分支负责
// （非管理员也能调检索，只是看不到 ADMIN 角色的行）。
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(50, 100),
		mdw.MaxBodyBytes(4<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, ""))
	MountAllAdmin(admin)

	return r
}
