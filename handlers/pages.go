package handlers

import (
	"net/http"

	"jiahe-site/models"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type Slide struct {
	Image    string
	Title    string
	Subtitle string
}

var heroSlides = []Slide{
	{Image: "https://images.unsplash.com/photo-1581091226825-a6a2a5aee158?auto=format&fit=crop&q=80&w=2000", Title: "助力智能制造", Subtitle: "Empowering Smart Manufacturing"},
	{Image: "https://images.unsplash.com/photo-1563986768609-322da13575f3?auto=format&fit=crop&q=80&w=2000", Title: "塑造智慧企业", Subtitle: "Shaping Smart Enterprise"},
	{Image: "https://images.unsplash.com/photo-1518770660439-4636190af475?auto=format&fit=crop&q=80&w=2000", Title: "数据驱动决策", Subtitle: "Data-Driven Decision Making"},
}

type HomePage struct {
	Slides   []Slide
	News     []models.NewsItem
	Cases    []models.CaseStudy
	Carousel models.Carousel
	// Controls is false when every showcase case already fits on screen.
	Controls bool
}

func (h *Handler) Home(c *gin.Context) {
	site := h.site.Snapshot()

	// ?case= moves the industry strip, out-of-range values are clamped
	showcase := site.IndustryShowcase()
	carousel := models.NewCarousel(len(showcase), models.CarouselVisible, cast.ToInt(c.Query("case")))

	h.page(c, http.StatusOK, "home.html", "首页", "home", HomePage{
		Slides:   heroSlides,
		News:     site.TopNews(models.HomeNewsLimit),
		Cases:    carousel.Window(showcase),
		Carousel: carousel,
		Controls: len(showcase) > models.CarouselVisible,
	})
}

type AboutPage struct {
	Tab        string
	Paragraphs []string
	News       []models.NewsItem
	Current    int
	Total      int
}

func (h *Handler) About(c *gin.Context) {
	site := h.site.Snapshot()

	tab := c.DefaultQuery("tab", "intro")
	if tab != "news" {
		tab = "intro"
	}

	data := AboutPage{Tab: tab, Paragraphs: paragraphs(site.CompanyIntro)}
	if tab == "news" {
		data.News, data.Current, data.Total = site.NewsPage(cast.ToInt(c.Query("page")), models.NewsPerPage)
	}

	h.page(c, http.StatusOK, "about.html", "发现公司", "about", data)
}

type ProductsPage struct {
	Tab        string
	Industry   int
	Detail     *models.IndustryDetail
	Filter     string
	Industries []string
	Cases      []models.CaseStudy
}

var productTabs = map[string]bool{"core": true, "tech": true, "feature": true, "case": true}

func (h *Handler) Products(c *gin.Context) {
	site := h.site.Snapshot()

	tab := c.DefaultQuery("tab", "core")
	if !productTabs[tab] {
		tab = "core"
	}

	data := ProductsPage{Tab: tab}
	switch tab {
	case "feature":
		if n := len(site.IndustryDetails); n > 0 {
			data.Industry = max(0, min(cast.ToInt(c.Query("industry")), n-1))
			detail := site.IndustryDetails[data.Industry]
			data.Detail = &detail
		}
	case "case":
		data.Filter = c.DefaultQuery("filter", models.AllIndustries)
		data.Industries = site.Industries()
		data.Cases = site.CasesByIndustry(data.Filter)
	}

	h.page(c, http.StatusOK, "products.html", "产品介绍", "products", data)
}

func (h *Handler) NewsDetail(c *gin.Context) {
	item, ok := h.site.Snapshot().FindNews(c.Param("id"))
	if !ok {
		h.notFound(c, "新闻未找到")
		return
	}
	h.page(c, http.StatusOK, "news_detail.html", item.Title, "about", gin.H{
		"Item":       item,
		"Paragraphs": paragraphs(item.Content),
	})
}

func (h *Handler) CaseDetail(c *gin.Context) {
	item, ok := h.site.Snapshot().FindCase(c.Param("id"))
	if !ok {
		h.notFound(c, "案例未找到")
		return
	}
	h.page(c, http.StatusOK, "case_detail.html", item.Name, "products", gin.H{
		"Item":       item,
		"Paragraphs": paragraphs(item.Content),
	})
}

// defaultProductFeatures fill the badge row of products saved without any.
var defaultProductFeatures = []string{"实时同步", "智能预测", "多端协同", "私有部署"}

func (h *Handler) ProductDetail(c *gin.Context) {
	item, ok := h.site.Snapshot().FindProduct(c.Param("id"))
	if !ok {
		h.notFound(c, "产品未找到")
		return
	}
	features := item.Features
	if features == nil {
		features = defaultProductFeatures
	}
	h.page(c, http.StatusOK, "product_detail.html", item.Name, "products", gin.H{
		"Item":       item,
		"Features":   features,
		"Paragraphs": paragraphs(item.FullSpecs),
	})
}
