package handlers

import (
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"jiahe-site/auth"
	"jiahe-site/editor"
	"jiahe-site/store"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	TemplateDir string
	StaticDir   string
	// Store, when set, serves the store wire protocol from this process.
	Store *store.Handler
}

// TemplateFuncs are available in every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"comma": func(n int64) string { return humanize.Comma(n) },
		"ago": func(ms int64) string {
			if ms <= 0 {
				return ""
			}
			return humanize.Time(time.UnixMilli(ms))
		},
		"lines": editor.JoinLines,
		"add":   func(a, b int) int { return a + b },
		"seq": func(n int) []int {
			out := make([]int, max(0, n))
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"excerpt": trimmed,
	}
}

func paragraphs(text string) []string {
	return editor.SplitLines(text)
}

func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.SetFuncMap(TemplateFuncs())
	r.LoadHTMLGlob(filepath.Join(opts.TemplateDir, "*.html"))
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		// never gated: other instances hydrate from this endpoint
		if opts.Store != nil {
			opts.Store.Register(api)
		}

		api.POST("/auth/login", h.APILogin)
		api.POST("/auth/logout", h.APILogout)

		admin := api.Group("/admin", h.APIGate(), auth.RequireAdminAPI(h.auth))
		{
			admin.GET("/site-data", h.GetSiteData)
			admin.PATCH("/site-data", h.PatchSiteData)
			admin.POST("/reconcile", h.APIReconcile)
			admin.GET("/alerts", h.Alerts)
		}
	}

	pages := r.Group("/", h.LoadingGate())
	{
		pages.GET("/", h.Home)
		pages.GET("/about", h.About)
		pages.GET("/products", h.Products)
		pages.GET("/news/:id", h.NewsDetail)
		pages.GET("/case/:id", h.CaseDetail)
		pages.GET("/product/:id", h.ProductDetail)

		pages.GET("/admin", h.AdminHome)
		pages.POST("/admin/login", h.AdminLogin)
		pages.POST("/admin/logout", h.AdminLogout)
	}

	console := r.Group("/admin", h.LoadingGate(), auth.RequireAdminConsole(h.auth))
	{
		for _, collection := range []string{editor.News, editor.Products, editor.Cases} {
			base := "/" + collection
			console.GET(base+"/new", h.NewItem(collection))
			console.GET(base+"/:id/edit", h.EditItem(collection))
			console.POST(base, h.SaveItem(collection))
			console.GET(base+"/:id/delete", h.ConfirmDelete(collection))
			console.POST(base+"/:id/delete", h.DeleteItem(collection))
		}
		console.POST("/basic", h.SaveBasic)
		console.POST("/contact", h.SaveContact)
		console.POST("/settings", h.SaveSettings)
		console.POST("/reconcile", h.Reconcile)
	}

	r.NoRoute(h.LoadingGate(), h.NoRoute)

	return r
}

// trimmed cuts s to n runes for list excerpts.
func trimmed(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
