package product

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-shop-admin/internal/core/cache"
	"go-shop-admin/internal/domain"
	"go-shop-admin/internal/repo"
	"go-shop-admin/internal/service"
	httpez "go-shop-admin/internal/transport/http/ez"
)

const categoriesCacheKey = "categories:all"

// Module 商品目录模块：检索 / 保存 / 删除 + 分类列表
type Module struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Cache *cache.Cache // 可为 nil（无 redis 时直查库）

	svc        *service.ProductService
	categories *repo.CategoryRepo
}

func NewModule(db *gorm.DB, l *zap.Logger, c *cache.Cache) *Module {
	return &Module{
		DB:         db,
		Log:        l,
		Cache:      c,
		svc:        service.NewProductService(db),
		categories: repo.NewCategoryRepo(db),
	}
}

func (m *Module) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g)

	// --- 检索：shop_id 必填，其余条件可选 ---
	type searchQ struct {
		ShopID uint `form:"shop_id" binding:"required"`
		service.ProductSearchForm
	}
	httpez.RegisterAction[searchQ, []domain.ProductWithCategoryName](e, m.DB, httpez.Action[searchQ, []domain.ProductWithCategoryName]{
		Method: http.MethodGet,
		Path:   "/products/search",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *searchQ) ([]domain.ProductWithCategoryName, error) {
			rows, err := m.svc.Search(c, in.ShopID, &in.ProductSearchForm)
			if err != nil {
				return nil, httpez.Internal("search products failed", err)
			}
			return rows, nil
		},
	})

	// --- 详情 ---
	httpez.RegisterAction[struct{}, *domain.Product](e, m.DB, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (*domain.Product, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			p, err := m.svc.FindOne(id)
			if err != nil {
				return nil, httpez.Internal("find product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			return p, nil
		},
	})

	// --- 保存（新增/更新，含分类关联对齐） ---
	httpez.RegisterAction[service.ProductForm, *domain.Product](e, m.DB, httpez.Action[service.ProductForm, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, in *service.ProductForm) (*domain.Product, error) {
			p, err := m.svc.Save(c, in)
			if err != nil {
				return nil, httpez.Internal("save product failed", err)
			}
			return p, nil
		},
	})

	// --- 删除 ---
	httpez.RegisterAction[struct{}, gin.H](e, m.DB, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			if err := m.svc.Delete(c, id); err != nil {
				return nil, err // ErrRecordNotFound 由统一错误映射转 404
			}
			return gin.H{"id": id}, nil
		},
	})

	// --- 分类列表（redis 旁路缓存） ---
	e.GET("/categories", func(c *gin.Context) (any, error) {
		if m.Cache == nil {
			return m.categories.FindAll()
		}
		out, err := cache.GetOrLoadJSON[[]domain.Category](m.Cache, c, categoriesCacheKey, 5*time.Minute,
			func(ctx context.Context) (*[]domain.Category, error) {
				cats, err := m.categories.FindAll()
				if err != nil {
					return nil, err
				}
				return &cats, nil
			})
		if err != nil {
			m.Log.Warn("category cache load failed", zap.Error(err))
			return m.categories.FindAll()
		}
		return out, nil
	})
}

func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, httpez.BadRequest("invalid id")
	}
	return uint(id), nil
}
