package users

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

type userGetter interface {
	Get(ctx context.Context, id int) (*User, error)
}

// CachedLoader serves the per-request "load user by id" lookup from an
// in-memory cache. Users are never updated nor deleted, so entries never expire.
// Password hashes are not cached.
type CachedLoader struct {
	repo  userGetter
	cache *freecache.Cache
}

func NewCachedLoader(repo userGetter, cacheSizeMB int) *CachedLoader {
	return &CachedLoader{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeMB * 1024 * 1024),
	}
}

func (l *CachedLoader) Get(ctx context.Context, id int) (*User, error) {
	key := []byte(strconv.Itoa(id))
	if cached, err := l.cache.Get(key); err == nil {
		var user User
		if err := json.Unmarshal(cached, &user); err == nil {
			return &user, nil
		}
		log.Warnf("users cache: corrupted entry for user %d", id)
	}

	user, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// PasswordHash is excluded by its json tag
	if userJson, err := json.Marshal(user); err == nil {
		if err := l.cache.Set(key, userJson, 0); err != nil {
			log.Warnf("users cache: set user %d: %s", id, err)
		}
	}

	return &User{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

func (l *CachedLoader) EntryCount() int64 {
	return l.cache.EntryCount()
}
