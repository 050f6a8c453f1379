package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageLimit = 200

func qInt(c *gin.Context, key string, def int) int {
	i, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return i
}

func qInt64(c *gin.Context, key string) int64 {
	i, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return i
}

// pageLimit reads page/limit, falling back to 1/20 for missing or
// out-of-range values.
func pageLimit(c *gin.Context) (int, int) {
	page, limit := qInt(c, "page", 1), qInt(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = 20
	}
	return page, limit
}
