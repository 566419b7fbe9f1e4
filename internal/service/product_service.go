package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-shop-admin/internal/domain"
	"go-shop-admin/internal/repo"
)

// ProductForm 商品保存入参（新增时 ID 为 0）
type ProductForm struct {
	ID          uint   `json:"id"`
	ShopID      uint   `json:"shopId" binding:"required"`
	Code        string `json:"code" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=128"`
	Weight      int    `json:"weight"`
	Height      int    `json:"height"`
	Price       int    `json:"price"`
	CategoryIDs []uint `json:"categoryIds"`
}

// ProductSearchForm 检索条件，全部可选、彼此 AND
type ProductSearchForm struct {
	Name       string `form:"name"`
	Code       string `form:"code"`
	Categories []uint `form:"category"`
	Weight1    *int   `form:"weight1"`
	Weight2    *int   `form:"weight2"`
	Height1    *int   `form:"height1"`
	Height2    *int   `form:"height2"`
	Price1     *int   `form:"price1"`
	Price2     *int   `form:"price2"`
}

type ProductService struct {
	db       *gorm.DB
	products *repo.ProductRepo
	links    *repo.CategoryProductRepo
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{
		db:       db,
		products: repo.NewProductRepo(db),
		links:    repo.NewCategoryProductRepo(db),
	}
}

func (s *ProductService) FindAll() ([]domain.Product, error) { return s.products.FindAll() }

func (s *ProductService) FindOne(id uint) (*domain.Product, error) { return s.products.FindByID(id) }

// 条件先攒成列表，最后统一 AND 进查询
type condition struct {
	query string
	args  []any
}

// Search 按 shopID + 检索条件查询商品，每行带上拼接好的分类名。
// shopID 是第一个且无条件生效的谓词（租户隔离）。
func (s *ProductService) Search(ctx context.Context, shopID uint, form *ProductSearchForm) ([]domain.ProductWithCategoryName, error) {
	conds := []condition{{"products.shop_id = ?", []any{shopID}}}

	if form.Name != "" {
		conds = append(conds, condition{"products.name LIKE ?", []any{"%" + form.Name + "%"}})
	}
	if form.Code != "" {
		conds = append(conds, condition{"products.code LIKE ?", []any{"%" + form.Code + "%"}})
	}
	// 每个分类 ID 各自生成一条存在性子查询并 AND：传多个 ID 时
	// 要求商品同时挂在所有这些分类下（交集，不是并集）
	for _, categoryID := range form.Categories {
		conds = append(conds, condition{
			"products.id IN (SELECT product_id FROM category_products WHERE category_id = ?)",
			[]any{categoryID},
		})
	}
	conds = append(conds, rangeCondition("products.weight", form.Weight1, form.Weight2)...)
	conds = append(conds, rangeCondition("products.height", form.Height1, form.Height2)...)
	conds = append(conds, rangeCondition("products.price", form.Price1, form.Price2)...)

	q := s.db.WithContext(ctx).Model(&domain.Product{}).
		Select(fmt.Sprintf(
			"products.id, products.code, products.name, products.weight, products.height, products.price, COALESCE(%s, '') AS category_name",
			groupConcatExpr(s.db.Dialector.Name()))).
		Joins("LEFT JOIN category_products ON category_products.product_id = products.id").
		Joins("LEFT JOIN categories ON categories.id = category_products.category_id").
		Group("products.id")

	for _, c := range conds {
		q = q.Where(c.query, c.args...)
	}

	var rows []domain.ProductWithCategoryName
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func rangeCondition(column string, lo, hi *int) []condition {
	switch {
	case lo != nil && hi != nil:
		return []condition{{column + " BETWEEN ? AND ?", []any{*lo, *hi}}}
	case lo != nil:
		return []condition{{column + " >= ?", []any{*lo}}}
	case hi != nil:
		return []condition{{column + " <= ?", []any{*hi}}}
	default:
		return nil
	}
}

// 分类名聚合列：各方言的字符串聚合写法不同
func groupConcatExpr(dialect string) string {
	switch dialect {
	case "mysql":
		return "GROUP_CONCAT(categories.name SEPARATOR ', ')"
	case "postgres":
		return "STRING_AGG(categories.name, ', ')"
	default: // sqlite
		return "GROUP_CONCAT(categories.name, ', ')"
	}
}

// Save 保存商品并对齐分类关联：目标集合里没有的关联删掉、
// 新出现的插入、不变的关联原行保留。整体在一个事务里。
func (s *ProductService) Save(ctx context.Context, form *ProductForm) (*domain.Product, error) {
	var saved domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []domain.CategoryProduct
		if form.ID != 0 {
			if err := tx.Where("product_id = ?", form.ID).Find(&existing).Error; err != nil {
				return err
			}
		}

		saved = domain.Product{
			ID:     form.ID,
			ShopID: form.ShopID,
			Code:   form.Code,
			Name:   form.Name,
			Weight: form.Weight,
			Height: form.Height,
			Price:  form.Price,
		}
		if err := tx.Save(&saved).Error; err != nil {
			return err
		}

		want := make(map[uint]bool, len(form.CategoryIDs))
		for _, id := range form.CategoryIDs {
			want[id] = true
		}
		// 解绑：现有关联不在目标集合里的删除；在的标记为已处理
		for _, link := range existing {
			if !want[link.CategoryID] {
				if err := tx.Delete(&domain.CategoryProduct{}, "id = ?", link.ID).Error; err != nil {
					return err
				}
				continue
			}
			delete(want, link.CategoryID)
		}
		// 绑定：剩下的按入参顺序插入（顺带去重）
		for _, id := range form.CategoryIDs {
			if !want[id] {
				continue
			}
			delete(want, id)
			link := domain.CategoryProduct{CategoryID: id, ProductID: saved.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete 删除商品。关联行的清理交给外键的级联规则；
// 规则缺失时由外键约束让删除直接失败，而不是留下孤儿关联。
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
