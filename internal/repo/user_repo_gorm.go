package repo

import (
	"errors"

	"gorm.io/gorm"

	"go-shop-admin/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Save(u *domain.User) error { return r.db.Save(u).Error }

func (r *UserRepo) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindAll() ([]domain.User, error) {
	var users []domain.User
	err := r.db.Find(&users).Error
	return users, err
}

func (r *UserRepo) FindByRole(role string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.Where("role = ?", role).Find(&users).Error
	return users, err
}

type DeletedUserRepo struct{ db *gorm.DB }

func NewDeletedUserRepo(db *gorm.DB) *DeletedUserRepo { return &DeletedUserRepo{db: db} }

func (r *DeletedUserRepo) Create(u *domain.DeletedUser) error { return r.db.Create(u).Error }

func (r *DeletedUserRepo) FindByID(id uint) (*domain.DeletedUser, error) {
	var u domain.DeletedUser
	err := r.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}
