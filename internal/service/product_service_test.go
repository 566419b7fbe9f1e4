package service

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-shop-admin/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // 内存库只能走一个连接
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.DeletedUser{},
		&domain.Category{},
		&domain.Product{},
		&domain.CategoryProduct{},
	))
	return db
}

func intp(v int) *int { return &v }

// 造数：分类 Food/Drink/Toys；shop 1 两个商品，shop 2 一个
func seedCatalog(t *testing.T, db *gorm.DB) (food, drink, toys domain.Category) {
	t.Helper()
	food = domain.Category{Name: "Food"}
	drink = domain.Category{Name: "Drink"}
	toys = domain.Category{Name: "Toys"}
	require.NoError(t, db.Create(&food).Error)
	require.NoError(t, db.Create(&drink).Error)
	require.NoError(t, db.Create(&toys).Error)
	return food, drink, toys
}

func mustSave(t *testing.T, s *ProductService, form *ProductForm) *domain.Product {
	t.Helper()
	p, err := s.Save(context.Background(), form)
	require.NoError(t, err)
	return p
}

// 拼接顺序不保证，比较时拆开
func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}

func resultIDs(rows []domain.ProductWithCategoryName) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSearchScopedByShop(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	seedCatalog(t, db)

	a := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A-1", Name: "Apple", Weight: 10, Height: 5, Price: 100})
	b := mustSave(t, s, &ProductForm{ShopID: 1, Code: "B-1", Name: "Bread", Weight: 20, Height: 8, Price: 200})
	mustSave(t, s, &ProductForm{ShopID: 2, Code: "A-1", Name: "Apple", Weight: 10, Height: 5, Price: 100})

	rows, err := s.Search(context.Background(), 1, &ProductSearchForm{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, resultIDs(rows))
}

func TestSearchFilters(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	seedCatalog(t, db)

	apple := mustSave(t, s, &ProductForm{ShopID: 1, Code: "FR-01", Name: "Apple", Weight: 10, Height: 5, Price: 100})
	bread := mustSave(t, s, &ProductForm{ShopID: 1, Code: "BK-02", Name: "Bread", Weight: 30, Height: 12, Price: 250})
	juice := mustSave(t, s, &ProductForm{ShopID: 1, Code: "FR-03", Name: "Apple Juice", Weight: 50, Height: 20, Price: 400})

	cases := []struct {
		name string
		form ProductSearchForm
		want []uint
	}{
		{"name substring", ProductSearchForm{Name: "Apple"}, []uint{apple.ID, juice.ID}},
		{"code substring", ProductSearchForm{Code: "FR-"}, []uint{apple.ID, juice.ID}},
		{"weight between", ProductSearchForm{Weight1: intp(20), Weight2: intp(40)}, []uint{bread.ID}},
		{"weight lower only", ProductSearchForm{Weight1: intp(30)}, []uint{bread.ID, juice.ID}},
		{"weight upper only", ProductSearchForm{Weight2: intp(30)}, []uint{apple.ID, bread.ID}},
		{"height between", ProductSearchForm{Height1: intp(10), Height2: intp(20)}, []uint{bread.ID, juice.ID}},
		{"price lower only", ProductSearchForm{Price1: intp(250)}, []uint{bread.ID, juice.ID}},
		{"price upper only", ProductSearchForm{Price2: intp(100)}, []uint{apple.ID}},
		{"combined", ProductSearchForm{Name: "Apple", Price1: intp(200)}, []uint{juice.ID}},
		{"no match", ProductSearchForm{Name: "Apple", Code: "BK-"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rows, err := s.Search(context.Background(), 1, &c.form)
			require.NoError(t, err)
			assert.ElementsMatch(t, c.want, resultIDs(rows))
		})
	}
}

// 传多个分类 ID 时是交集：商品必须同时挂在每个分类下
func TestSearchCategoryIntersection(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, drink, _ := seedCatalog(t, db)

	a := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "A", CategoryIDs: []uint{food.ID, drink.ID}})
	b := mustSave(t, s, &ProductForm{ShopID: 1, Code: "B", Name: "B", CategoryIDs: []uint{food.ID}})

	rows, err := s.Search(context.Background(), 1, &ProductSearchForm{Categories: []uint{food.ID, drink.ID}})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, resultIDs(rows))

	rows, err = s.Search(context.Background(), 1, &ProductSearchForm{Categories: []uint{food.ID}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, resultIDs(rows))
}

func TestSearchCategoryNameColumn(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, drink, _ := seedCatalog(t, db)

	linked := mustSave(t, s, &ProductForm{ShopID: 1, Code: "L", Name: "Linked", CategoryIDs: []uint{food.ID, drink.ID}})
	bare := mustSave(t, s, &ProductForm{ShopID: 1, Code: "N", Name: "Bare"})

	rows, err := s.Search(context.Background(), 1, &ProductSearchForm{})
	require.NoError(t, err)
	byID := map[uint]domain.ProductWithCategoryName{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.ElementsMatch(t, []string{"Food", "Drink"}, splitNames(byID[linked.ID].CategoryName))
	assert.Equal(t, "", byID[bare.ID].CategoryName) // 空串，不是 NULL
}

func TestSearchIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, _, _ := seedCatalog(t, db)
	mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "Apple", CategoryIDs: []uint{food.ID}})
	mustSave(t, s, &ProductForm{ShopID: 1, Code: "B", Name: "Bread"})

	form := &ProductSearchForm{Code: ""}
	first, err := s.Search(context.Background(), 1, form)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), 1, form)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

// {1,2} → {2,3}：1 的关联删掉、3 新增、2 的关联原行保留
func TestSaveReconcilesCategoryLinks(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, drink, toys := seedCatalog(t, db)

	p := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "Apple", CategoryIDs: []uint{food.ID, drink.ID}})

	var before []domain.CategoryProduct
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&before).Error)
	require.Len(t, before, 2)
	var drinkLinkID uint
	for _, l := range before {
		if l.CategoryID == drink.ID {
			drinkLinkID = l.ID
		}
	}

	mustSave(t, s, &ProductForm{ID: p.ID, ShopID: 1, Code: "A", Name: "Apple", CategoryIDs: []uint{drink.ID, toys.ID}})

	var after []domain.CategoryProduct
	require.NoError(t, db.Where("product_id = ?", p.ID).Order("category_id").Find(&after).Error)
	require.Len(t, after, 2)

	got := map[uint]uint{} // categoryID -> link row id
	for _, l := range after {
		got[l.CategoryID] = l.ID
	}
	assert.NotContains(t, got, food.ID)
	assert.Contains(t, got, toys.ID)
	assert.Equal(t, drinkLinkID, got[drink.ID], "unchanged link must keep its row, not be recreated")
}

func TestSaveDeduplicatesCategoryIDs(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, _, _ := seedCatalog(t, db)

	p := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "Apple", CategoryIDs: []uint{food.ID, food.ID}})

	var links []domain.CategoryProduct
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&links).Error)
	assert.Len(t, links, 1)
}

func TestSaveUpdatesScalarFields(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	seedCatalog(t, db)

	p := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "Apple", Price: 100})
	mustSave(t, s, &ProductForm{ID: p.ID, ShopID: 1, Code: "A2", Name: "Apple v2", Price: 150})

	got, err := s.FindOne(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A2", got.Code)
	assert.Equal(t, "Apple v2", got.Name)
	assert.Equal(t, 150, got.Price)

	var count int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteCascadesLinks(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	food, _, _ := seedCatalog(t, db)

	p := mustSave(t, s, &ProductForm{ShopID: 1, Code: "A", Name: "Apple", CategoryIDs: []uint{food.ID}})
	require.NoError(t, s.Delete(context.Background(), p.ID))

	got, err := s.FindOne(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// 关联由外键级联清掉，不留孤儿
	var links []domain.CategoryProduct
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&links).Error)
	assert.Empty(t, links)
}

func TestDeleteMissingProduct(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)
	err := s.Delete(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
