package cache

import (
	"fmt"
	"strings"
	"time"
)

// 各逻辑资源的缓存过期时间
const (
	TTLList      = 30 * time.Minute
	TTLDetail    = 30 * time.Minute
	TTLSearch    = 30 * time.Minute
	TTLCategory  = 1 * time.Hour
	TTLRecommend = 1 * time.Hour
	TTLStats     = 1 * time.Hour
	TTLRanking   = 2 * time.Hour
)

// 资源键前缀
const (
	PrefixDramaList   = "dramas:list"
	PrefixDramaDetail = "dramas:detail"
	PrefixCategory    = "categories"
	PrefixStats       = "stats"
	PrefixRecommend   = "recommend"
	PrefixRanking     = "ranking"
	PrefixSearch      = "search"
	PrefixAuthLock    = "auth:lock"
	PrefixAuthBlack   = "auth:blacklist"
)

// Key 由资源前缀和请求参数拼出确定性缓存键
func Key(prefix string, parts ...interface{}) string {
	if len(parts) == 0 {
		return prefix
	}
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, fmt.Sprintf("%v", p))
	}
	return prefix + ":" + strings.Join(segments, ":")
}
