package handlers

import (
	"net/http"
	"time"

	"jiahe-site/auth"
	"jiahe-site/models"
	"jiahe-site/sitedata"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExperienceURL is the hosted demo linked from the header and detail pages.
const ExperienceURL = "http://210.12.53.106:97/"

type Handler struct {
	site *sitedata.Controller
	auth *auth.Service
	log  *logrus.Logger
	now  func() time.Time
}

func New(site *sitedata.Controller, authSvc *auth.Service, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		site: site,
		auth: authSvc,
		log:  log,
		now:  time.Now,
	}
}

// PageData is what every public template receives. Page is the
// page-specific part.
type PageData struct {
	Title         string
	Nav           string
	Site          *models.SiteData
	ExperienceURL string
	Year          int
	Page          any
}

func (h *Handler) page(c *gin.Context, status int, tmpl, title, nav string, page any) {
	c.HTML(status, tmpl, PageData{
		Title:         title,
		Nav:           nav,
		Site:          h.site.Snapshot(),
		ExperienceURL: ExperienceURL,
		Year:          h.now().Year(),
		Page:          page,
	})
}

func (h *Handler) notFound(c *gin.Context, message string) {
	h.page(c, http.StatusNotFound, "not_found.html", "页面未找到", "", gin.H{"Message": message})
}

// NoRoute renders the 404 page for unknown paths.
func (h *Handler) NoRoute(c *gin.Context) {
	h.notFound(c, "您访问的页面不存在")
}
