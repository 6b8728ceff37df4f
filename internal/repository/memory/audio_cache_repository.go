package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// AudioCacheRepository remembers synthesized speech by the text it was made from.
type AudioCacheRepository struct {
	cache *cache.Cache
}

func NewAudioCacheRepository(ttl time.Duration) *AudioCacheRepository {
	// Expired items are purged every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &AudioCacheRepository{
		cache: c,
	}
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (r *AudioCacheRepository) Save(text, payload string) {
	r.cache.Set(digest(text), payload, cache.DefaultExpiration)
}

func (r *AudioCacheRepository) Get(text string) (string, bool) {
	if x, found := r.cache.Get(digest(text)); found {
		return x.(string), true
	}
	return "", false
}

func (r *AudioCacheRepository) Len() int {
	return r.cache.ItemCount()
}
