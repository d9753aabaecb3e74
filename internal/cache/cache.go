// Package cache — TTL-кэш в памяти процесса для данных каталога, блога и sitemap.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Cache struct{ c *gocache.Cache }

// New — TTL по умолчанию и очистка просроченных раз в минуту.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Cache) Get(k string) (any, bool) {
	if m == nil {
		return nil, false
	}
	return m.c.Get(k)
}

func (m *Cache) Set(k string, v any) {
	if m == nil {
		return
	}
	m.c.Set(k, v, gocache.DefaultExpiration)
}

// GetOrLoad возвращает значение из кэша или вызывает load и кэширует результат.
// Ошибки не кэшируются. nil *Cache работает как «без кэша».
func GetOrLoad[T any](m *Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := m.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	m.Set(key, v)
	return v, nil
}
