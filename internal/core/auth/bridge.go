package auth

import (
	"hash/fnv"
	"sync"

	"go-shop-admin/internal/domain"
)

// UserFinder 持久层查询口（repo.UserRepo 满足；未命中返回 nil, nil）
type UserFinder interface {
	FindByEmail(email string) (*domain.User, error)
}

const bridgeShards = 32

// Bridge 登录桥：每次认证前先查 users 表，命中则把凭证规整成
// {scheme} 形式后覆盖写入内存凭证表，最终由内存表给出结果。
// 同一 login 标识的覆盖写（删 + 插 + 查）串行执行，避免并发下
// 在删/插间隙读到瞬时缺失。
type Bridge struct {
	users UserFinder
	store *CredStore
	enc   *PasswordEncoder
	locks [bridgeShards]sync.Mutex
}

func NewBridge(users UserFinder, store *CredStore, enc *PasswordEncoder) *Bridge {
	return &Bridge{users: users, store: store, enc: enc}
}

// Authenticate 按 login 标识（邮箱）取回认证主体。
// 持久层与内存表都没有时返回 ErrPrincipalNotFound。
func (b *Bridge) Authenticate(login string) (Principal, error) {
	mu := b.lockFor(login)
	mu.Lock()
	defer mu.Unlock()

	u, err := b.users.FindByEmail(login)
	if err != nil {
		return Principal{}, err
	}
	if u != nil {
		pw := u.Password
		if !IsEncoded(pw) {
			// 库里还是裸值：补一次哈希并打上 noop 标记。
			// 已带 {scheme} 的凭证原样放行（幂等）。
			pw = NoopPrefix + b.enc.Encode(pw)
		}
		p := Principal{
			Username: u.Email,
			Password: pw,
			Roles:    []string{"ROLE_" + u.Role},
		}
		b.store.Delete(login) // 可能已存在旧条目，先删再插
		b.store.Create(p)
	}
	return b.store.Find(login)
}

func (b *Bridge) lockFor(login string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(login))
	return &b.locks[h.Sum32()%bridgeShards]
}
