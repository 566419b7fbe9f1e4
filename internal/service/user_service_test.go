package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-shop-admin/internal/core/auth"
	"go-shop-admin/internal/domain"
)

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewUserService(db, &auth.PasswordEncoder{Cost: bcrypt.MinCost}), db
}

func seedUser(t *testing.T, s *UserService, name, email, role string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Password: "pw-" + name, Role: role}
	require.NoError(t, s.Save(u))
	return u
}

func userNames(users []domain.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names
}

func TestSaveAlwaysRewrapsPassword(t *testing.T) {
	s, _ := newUserService(t)

	u := &domain.User{Name: "bob", Email: "bob@example.com", Password: "secret", Role: domain.RoleUser}
	require.NoError(t, s.Save(u))
	first := u.Password
	assert.True(t, strings.HasPrefix(first, "{noop}{bcrypt}"))

	// 再存一次：已哈希的值被再次哈希，凭证整个变掉
	require.NoError(t, s.Save(u))
	second := u.Password
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "{noop}{bcrypt}"))

	// 二次哈希后原密码无法再通过校验（既有缺陷，测试锁定而非修复）
	enc := &auth.PasswordEncoder{Cost: bcrypt.MinCost}
	assert.False(t, enc.Matches("secret", second))
}

func TestDeleteArchivesSnapshot(t *testing.T) {
	s, db := newUserService(t)
	u := seedUser(t, s, "bob", "bob@example.com", domain.RoleUser)

	require.NoError(t, s.Delete(context.Background(), u))

	// 原记录查不到了
	got, err := s.FindOne(u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// 归档快照字段逐项一致
	var snap domain.DeletedUser
	require.NoError(t, db.First(&snap, "id = ?", u.ID).Error)
	assert.Equal(t, u.ID, snap.ID)
	assert.Equal(t, u.Name, snap.Name)
	assert.Equal(t, u.Email, snap.Email)
	assert.Equal(t, u.Password, snap.Password)
	assert.Equal(t, u.Role, snap.Role)

	var count int64
	require.NoError(t, db.Model(&domain.DeletedUser{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// 归档失败时原记录必须保留（两步要么都发生要么都不发生）
func TestDeleteRollsBackWhenArchiveFails(t *testing.T) {
	s, db := newUserService(t)
	u := seedUser(t, s, "bob", "bob@example.com", domain.RoleUser)

	// 预先占住归档主键，制造归档冲突
	require.NoError(t, db.Create(&domain.DeletedUser{
		ID: u.ID, Name: "other", Email: "other@example.com", Password: "x", Role: domain.RoleUser,
	}).Error)

	err := s.Delete(context.Background(), u)
	require.Error(t, err)

	got, err := s.FindOne(u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "user must survive a failed archive")
}

func TestSearchRoleGate(t *testing.T) {
	s, _ := newUserService(t)
	seedUser(t, s, "alice", "alice@example.com", domain.RoleAdmin)
	seedUser(t, s, "bob", "bob@example.com", domain.RoleUser)
	seedUser(t, s, "carol", "carol@example.com", domain.RoleUser)

	// 非管理员看不到 ADMIN 行
	users, err := s.Search(context.Background(), &UserSearchForm{}, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, userNames(users))

	// 管理员不受限
	users, err = s.Search(context.Background(), &UserSearchForm{}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, userNames(users))
}

// name 是精确匹配，不是商品侧那种模糊匹配
func TestSearchNameExactMatch(t *testing.T) {
	s, _ := newUserService(t)
	seedUser(t, s, "alice", "a1@example.com", domain.RoleUser)
	seedUser(t, s, "alice smith", "a2@example.com", domain.RoleUser)

	users, err := s.Search(context.Background(), &UserSearchForm{Name: "alice"}, true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a1@example.com", users[0].Email)
}

// 带 name 的分支同样不给非管理员放行 ADMIN 行
func TestSearchNameFilterRespectsRoleGate(t *testing.T) {
	s, _ := newUserService(t)
	seedUser(t, s, "alice", "admin@example.com", domain.RoleAdmin)

	users, err := s.Search(context.Background(), &UserSearchForm{Name: "alice"}, false)
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = s.Search(context.Background(), &UserSearchForm{Name: "alice"}, true)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestIsAdmin(t *testing.T) {
	s, _ := newUserService(t)
	assert.True(t, s.IsAdmin([]string{"ROLE_USER", "ROLE_ADMIN"}))
	assert.False(t, s.IsAdmin([]string{"ROLE_USER"}))
	assert.False(t, s.IsAdmin([]string{"role_admin", "ADMIN"})) // 必须是精确令牌
	assert.False(t, s.IsAdmin(nil))
}

func TestFindByEmail(t *testing.T) {
	s, _ := newUserService(t)
	seedUser(t, s, "bob", "bob@example.com", domain.RoleUser)

	u, err := s.FindByEmail("bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "bob", u.Name)

	u, err = s.FindByEmail("missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}
