package admin

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct{ d Dependencies }

func NewUploadHandler(d Dependencies) *UploadHandler { return &UploadHandler{d: d} }

// Gallery stores one image under upload.dir/<yyyymmdd>/ and returns its public URL.
func (h *UploadHandler) Gallery(c *gin.Context) {
	f, err := c.FormFile("file")
	if err != nil {
		response.Error(c, retcode.EMPTY_PARAMS, "file is required")
		return
	}
	up := h.d.Config.Upload
	maxBytes := int64(up.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && f.Size > maxBytes {
		response.Error(c, retcode.PARAM_INVALID, "file too large")
		return
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Filename), "."))
	if !allowedExt(up.AllowedExt, ext) {
		response.Error(c, retcode.PARAM_INVALID, "unsupported file type")
		return
	}
	root := up.Dir
	if root == "" {
		root = "upload"
	}
	day := time.Now().Format("20060102")
	dir := filepath.Join(root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.d.Logger.WithContext(c.Request.Context()).Error("upload_mkdir_failed", zap.Error(err))
		response.Error(c, retcode.FILE_SAVE_ERROR, "cannot store file")
		return
	}
	name := randomHex(12) + "_" + time.Now().Format("150405") + "." + ext
	if err := c.SaveUploadedFile(f, filepath.Join(dir, name)); err != nil {
		h.d.Logger.WithContext(c.Request.Context()).Error("upload_save_failed", zap.Error(err))
		response.Error(c, retcode.FILE_SAVE_ERROR, "cannot store file")
		return
	}
	response.Uploaded(c, "/"+filepath.ToSlash(filepath.Join(filepath.Base(root), day, name)))
}

func allowedExt(allowed []string, ext string) bool {
	if len(allowed) == 0 {
		return ext != ""
	}
	for _, e := range allowed {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("150405")
	}
	return hex.EncodeToString(b)
}
