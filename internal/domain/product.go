package domain

import "time"

// Product 商品：shop_id 为租户分区键，所有查询都必须带上
type Product struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	ShopID uint   `gorm:"index;not null" json:"shopId"`
	Code   string `gorm:"size:64;not null" json:"code"`
	Name   string `gorm:"size:128;not null" json:"name"`
	Weight int    `json:"weight"`
	Height int    `json:"height"`
	Price  int    `json:"price"`

	CategoryProducts []CategoryProduct `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`
}

func (Category) TableName() string { return "categories" }

// CategoryProduct 商品-分类关联。同一商品下 category_id 不允许重复
type CategoryProduct struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CategoryID uint `gorm:"not null;uniqueIndex:idx_category_product" json:"categoryId"`
	ProductID  uint `gorm:"not null;uniqueIndex:idx_category_product" json:"productId"`
}

func (CategoryProduct) TableName() string { return "category_products" }

// ProductWithCategoryName 检索结果投影：商品字段 + 逗号拼接的分类名
// （无分类时为空串，不是 NULL）。不落库。
type ProductWithCategoryName struct {
	ID           uint   `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Weight       int    `json:"weight"`
	Height       int    `json:"height"`
	Price        int    `json:"price"`
	CategoryName string `gorm:"column:category_name" json:"categoryName"`
}
