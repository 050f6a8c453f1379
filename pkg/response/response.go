package response

import (
	"go-studioadmin/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

// Body is the admin API envelope. Mutations answer {ok, item}, lists {ok, items}.
type Body struct {
	OK       bool        `json:"ok"`
	Code     int         `json:"code,omitempty"`
	Error    string      `json:"error,omitempty"`
	Item     interface{} `json:"item,omitempty"`
	Items    interface{} `json:"items,omitempty"`
	Assigned *int        `json:"assigned,omitempty"`
	Count    *int64      `json:"count,omitempty"`
	URL      string      `json:"url,omitempty"`
}

func Item(c *gin.Context, item interface{}) {
	c.JSON(200, Body{OK: true, Item: item})
}

// Items always renders an array, never null, so clients can range over it.
func Items[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(200, Body{OK: true, Items: items})
}

// Page answers a paginated read with the total row count.
func Page[T any](c *gin.Context, items []T, total int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(200, Body{OK: true, Items: items, Count: &total})
}

func Uploaded(c *gin.Context, url string) {
	c.JSON(200, Body{OK: true, URL: url})
}

func OK(c *gin.Context) {
	c.JSON(200, Body{OK: true})
}

func Assigned(c *gin.Context, n int) {
	c.JSON(200, Body{OK: true, Assigned: &n})
}

// Error expects a legacy business code (negative). Non-negative codes collapse to INVALID.
func Error(c *gin.Context, code int, msg string) {
	if code >= 0 {
		code = retcode.INVALID
	}
	c.JSON(retcode.HTTPStatus(code), Body{OK: false, Code: code, Error: msg})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, code int, msg string) {
	Error(c, code, msg)
	c.Abort()
}
