package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-shop-admin/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Save(p *domain.Product) error { return r.db.Save(p).Error }

func (r *ProductRepo) FindByID(id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) FindAll() ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.Find(&products).Error
	return products, err
}

func (r *ProductRepo) Delete(id uint) (int64, error) {
	res := r.db.Delete(&domain.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) FindAll() ([]domain.Category, error) {
	var cats []domain.Category
	err := r.db.Order("id").Find(&cats).Error
	return cats, err
}

type CategoryProductRepo struct{ db *gorm.DB }

func NewCategoryProductRepo(db *gorm.DB) *CategoryProductRepo {
	return &CategoryProductRepo{db: db}
}

func (r *CategoryProductRepo) FindByProductID(productID uint) ([]domain.CategoryProduct, error) {
	var links []domain.CategoryProduct
	err := r.db.Where("product_id = ?", productID).Find(&links).Error
	return links, err
}
