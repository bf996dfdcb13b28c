package datacom

import (
	"fmt"
	"math"

	"github.com/go-redis/redis"
)

// standingFromZ reads a sorted set member back into a leaderboard line
func standingFromZ(z redis.Z) Standing {
	return Standing{
		ID:    memberString(z.Member),
		Score: int(math.Round(z.Score)),
	}
}

func memberString(m interface{}) string {
	switch v := m.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
