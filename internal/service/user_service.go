package service

import (
	"context"

	"gorm.io/gorm"

	"go-shop-admin/internal/core/auth"
	"go-shop-admin/internal/domain"
	"go-shop-admin/internal/repo"
)

// UserSearchForm 用户检索条件。name 是精确匹配（和商品侧的
// 模糊匹配不同，这是有意保留的差异）
type UserSearchForm struct {
	Name string `form:"name"`
}

type UserService struct {
	db      *gorm.DB
	users   *repo.UserRepo
	deleted *repo.DeletedUserRepo
	enc     *auth.PasswordEncoder
}

func NewUserService(db *gorm.DB, enc *auth.PasswordEncoder) *UserService {
	return &UserService{
		db:      db,
		users:   repo.NewUserRepo(db),
		deleted: repo.NewDeletedUserRepo(db),
		enc:     enc,
	}
}

func (s *UserService) FindAll() ([]domain.User, error) { return s.users.FindAll() }

func (s *UserService) FindOne(id uint) (*domain.User, error) { return s.users.FindByID(id) }

func (s *UserService) FindByEmail(email string) (*domain.User, error) {
	return s.users.FindByEmail(email)
}

// Save 保存用户。密码无条件重新哈希并打 {noop} 标记：
// 对已哈希的值重复调用会二次哈希，使原凭证失效。
// 这与登录桥的"已编码则跳过"不对称，属于被测试锁定的既有行为。
func (s *UserService) Save(u *domain.User) error {
	u.Password = auth.NoopPrefix + s.enc.Encode(u.Password)
	return s.users.Save(u)
}

// Delete 删除用户：先把快照写入 deleted_users，再删原记录。
// 两步同一事务，要么都生效要么都不生效。
func (s *UserService) Delete(ctx context.Context, u *domain.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot := domain.DeletedUser{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Role:     u.Role,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, "id = ?", u.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound // 回滚归档
		}
		return nil
	})
}

// Search 按条件检索用户。非管理员只能看到 USER 角色；
// 带 name 时走原生 SQL 的精确匹配分支。
func (s *UserService) Search(ctx context.Context, form *UserSearchForm, isAdmin bool) ([]domain.User, error) {
	role := domain.RoleUser
	if isAdmin {
		role = domain.RoleAdmin
	}
	if form.Name != "" {
		sql := "SELECT * FROM users WHERE name = ?"
		args := []any{form.Name}
		if !isAdmin {
			sql += " AND role = ?"
			args = append(args, role)
		}
		var users []domain.User
		err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&users).Error
		return users, err
	}
	if !isAdmin {
		return s.users.FindByRole(domain.RoleUser)
	}
	return s.users.FindAll()
}

// IsAdmin 判断授权令牌集合里是否带 ROLE_ADMIN
func (s *UserService) IsAdmin(authorities []string) bool {
	for _, a := range authorities {
		if a == "ROLE_ADMIN" {
			return true
		}
	}
	return false
}
