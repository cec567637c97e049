package web

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Frontend 从磁盘目录提供前端构建产物
type Frontend struct {
	dist string
	fsys fs.FS
}

// BuildInfo 前端产物信息，用于排查部署问题
type BuildInfo struct {
	Cwd          string `json:"cwd"`
	FrontendDist string `json:"FRONTEND_DIST"`
	DistResolved string `json:"dist_resolved"`
	IndexExists  bool   `json:"index_exists"`
}

// NewFrontend dist 为前端构建目录，可以是相对路径
func NewFrontend(dist string) *Frontend {
	resolved, err := filepath.Abs(dist)
	if err != nil {
		resolved = dist
	}
	return &Frontend{dist: dist, fsys: os.DirFS(resolved)}
}

// NewFrontendFS 使用指定文件系统，测试中使用 fstest.MapFS
func NewFrontendFS(dist string, fsys fs.FS) *Frontend {
	return &Frontend{dist: dist, fsys: fsys}
}

// Info 返回产物信息
func (f *Frontend) Info() BuildInfo {
	cwd, _ := os.Getwd()
	resolved, err := filepath.Abs(f.dist)
	if err != nil {
		resolved = f.dist
	}
	return BuildInfo{
		Cwd:          cwd,
		FrontendDist: f.dist,
		DistResolved: resolved,
		IndexExists:  f.exists("index.html"),
	}
}

func (f *Frontend) exists(name string) bool {
	info, err := fs.Stat(f.fsys, name)
	return err == nil && !info.IsDir()
}

// SetupRouter 设置前端静态文件路由
func (f *Frontend) SetupRouter(r *gin.Engine) {
	if !f.exists("index.html") {
		klog.Warningf("[Web] 未找到前端产物: dist=%s", f.dist)
	}

	// 获取assets目录的文件系统
	if assetsFS, err := fs.Sub(f.fsys, "assets"); err == nil {
		r.GET("/assets/*filepath", gin.WrapH(http.StripPrefix("/assets", http.FileServer(http.FS(assetsFS)))))
	}

	r.GET("/", f.index)

	// 设置根路由（SPA）
	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		// 对于API请求，返回404
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
			return
		}

		// 构建目录中存在的文件直接返回
		name := strings.TrimPrefix(path.Clean(p), "/")
		if name != "" && fs.ValidPath(name) && f.exists(name) {
			c.FileFromFS(name, http.FS(f.fsys))
			return
		}

		// 对于其他请求，返回index.html（SPA路由）
		f.index(c)
	})
}

func (f *Frontend) index(c *gin.Context) {
	indexHTML, err := fs.ReadFile(f.fsys, "index.html")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"note":          "Frontend index.html not found",
			"FRONTEND_DIST": f.dist,
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
