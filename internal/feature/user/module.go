package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-shop-admin/internal/core/auth"
	"go-shop-admin/internal/domain"
	"go-shop-admin/internal/service"
	httpez "go-shop-admin/internal/transport/http/ez"
)

// Module 用户目录模块（管理端）：检索 / CRUD / 删除归档
type Module struct {
	DB  *gorm.DB
	Log *zap.Logger

	svc *service.UserService
}

func NewModule(db *gorm.DB, l *zap.Logger, enc *auth.PasswordEncoder) *Module {
	return &Module{DB: db, Log: l, svc: service.NewUserService(db, enc)}
}

type userForm struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

func (m *Module) MountAdmin(g *gin.RouterGroup) {
	e := httpez.New(g)

	// --- 检索：管理员看全部角色，普通用户只能看 USER ---
	httpez.RegisterAction[service.UserSearchForm, []domain.User](e, m.DB, httpez.Action[service.UserSearchForm, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *service.UserSearchForm) ([]domain.User, error) {
			users, err := m.svc.Search(c, in, m.svc.IsAdmin(callerAuthorities(c)))
			if err != nil {
				return nil, httpez.Internal("search users failed", err)
			}
			return users, nil
		},
	})

	// --- 详情 ---
	httpez.RegisterAction[struct{}, *domain.User](e, m.DB, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			u, err := m.svc.FindOne(id)
			if err != nil {
				return nil, httpez.Internal("find user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			return u, nil
		},
	})

	// --- 新建 ---
	httpez.RegisterAction[userForm, *domain.User](e, m.DB, httpez.Action[userForm, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, in *userForm) (*domain.User, error) {
			u := domain.User{
				Name:     in.Name,
				Email:    in.Email,
				Password: in.Password,
				Role:     roleOrDefault(in.Role),
			}
			if err := m.svc.Save(&u); err != nil {
				return nil, httpez.Internal("save user failed", err)
			}
			return &u, nil
		},
	})

	// --- 更新（密码会被再次哈希，见 UserService.Save） ---
	httpez.RegisterAction[userForm, *domain.User](e, m.DB, httpez.Action[userForm, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, in *userForm) (*domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			u, err := m.svc.FindOne(id)
			if err != nil {
				return nil, httpez.Internal("find user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			u.Name = in.Name
			u.Email = in.Email
			u.Password = in.Password
			u.Role = roleOrDefault(in.Role)
			if err := m.svc.Save(u); err != nil {
				return nil, httpez.Internal("save user failed", err)
			}
			return u, nil
		},
	})

	// --- 删除（先归档到 deleted_users 再删） ---
	httpez.RegisterAction[struct{}, gin.H](e, m.DB, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			u, err := m.svc.FindOne(id)
			if err != nil {
				return nil, httpez.Internal("find user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if err := m.svc.Delete(c, u); err != nil {
				return nil, httpez.Internal("delete user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})
}

// 调用方的授权令牌集合，来自 JWT claims
func callerAuthorities(c *gin.Context) []string {
	if v, ok := c.Get("claims"); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl.Authorities()
		}
	}
	return nil
}

func roleOrDefault(role string) string {
	if role == "" {
		return domain.RoleUser
	}
	return role
}

func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, httpez.BadRequest("invalid id")
	}
	return uint(id), nil
}
