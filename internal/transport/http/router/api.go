package router

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-shop-admin/internal/core/auth"
	httpez "go-shop-admin/internal/transport/http/ez"
	mdw "go-shop-admin/internal/transport/http/middleware"
)

// NewAPIEngine 用户端引擎：/auth/login 公开，目录接口挂鉴权分组
func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, bridge *auth.Bridge, enc *auth.PasswordEncoder) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	mountLoginAction(api, db, jwter, bridge, enc)

	// 登录后的目录接口（商品检索等模块挂这里）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))
	MountAllAPI(authed)

	return r
}

// mountLoginAction 登录：先过登录桥（同步持久层到内存凭证表），
// 再按凭证自带的 scheme 校验，最后签 JWT
func mountLoginAction(api *gin.RouterGroup, db *gorm.DB, jwter *auth.JWTer, bridge *auth.Bridge, enc *auth.PasswordEncoder) {
	e := httpez.New(api)

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string `json:"token"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	httpez.RegisterAction[loginIn, loginOut](e, db, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *loginIn) (loginOut, error) {
			p, err := bridge.Authenticate(in.Email)
			if errors.Is(err, auth.ErrPrincipalNotFound) {
				return loginOut{}, httpez.Unauthorized("invalid credentials")
			}
			if err != nil {
				return loginOut{}, httpez.Internal("login failed", err)
			}
			if !enc.Matches(in.Password, p.Password) {
				return loginOut{}, httpez.Unauthorized("invalid credentials")
			}
			role := "user"
			if len(p.Roles) > 0 {
				role = strings.ToLower(strings.TrimPrefix(p.Roles[0], "ROLE_"))
			}
			tok, err := jwter.Issue(p.Username, role)
			if err != nil || tok == "" {
				return loginOut{}, httpez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, Email: p.Username, Role: role}, nil
		},
	})
}
