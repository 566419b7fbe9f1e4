package auth

import (
	"errors"
	"sync"
)

var ErrPrincipalNotFound = errors.New("principal not found")

// Principal 登录主体：login 标识（邮箱）、已编码凭证、授权角色
type Principal struct {
	Username string
	Password string
	Roles    []string
}

// CredStore 进程级内存凭证表。所有登录请求共享同一份，
// 写入是整条覆盖（Create 直接替换同名条目）。
type CredStore struct {
	mu    sync.RWMutex
	users map[string]Principal
}

// NewCredStore 可传入种子账号（不落库的系统账号）
func NewCredStore(seed ...Principal) *CredStore {
	s := &CredStore{users: make(map[string]Principal, len(seed))}
	for _, p := range seed {
		s.users[p.Username] = p
	}
	return s
}

func (s *CredStore) Create(p Principal) {
	s.mu.Lock()
	s.users[p.Username] = p
	s.mu.Unlock()
}

// Delete 删除条目；不存在时静默返回
func (s *CredStore) Delete(username string) {
	s.mu.Lock()
	delete(s.users, username)
	s.mu.Unlock()
}

func (s *CredStore) Find(username string) (Principal, error) {
	s.mu.RLock()
	p, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

func (s *CredStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
