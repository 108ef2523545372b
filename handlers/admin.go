package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"jiahe-site/auth"
	"jiahe-site/editor"
	"jiahe-site/models"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

var adminViews = []string{"news", "products", "cases", "basic", "settings"}

type consoleData struct {
	Username string
	View     string
	Flashes  []string
	Site     *models.SiteData
	Version  int64
	Page     any
}

func (h *Handler) console(c *gin.Context, status int, tmpl string, s *auth.Session, view string, page any) {
	c.HTML(status, tmpl, consoleData{
		Username: s.Username(),
		View:     view,
		Flashes:  s.TakeFlashes(),
		Site:     h.site.Snapshot(),
		Version:  h.site.Version(),
		Page:     page,
	})
}

func session(c *gin.Context) *auth.Session {
	s, _ := auth.CurrentSession(c)
	return s
}

// AdminHome shows the login form, or the dashboard for a logged-in session.
func (h *Handler) AdminHome(c *gin.Context) {
	s, ok := auth.ConsoleSession(c, h.auth)
	if !ok {
		c.HTML(http.StatusOK, "admin_login.html", gin.H{"Username": ""})
		return
	}

	view := c.DefaultQuery("view", "news")
	if !slices.Contains(adminViews, view) {
		view = "news"
	}
	h.console(c, http.StatusOK, "admin_dashboard.html", s, view, nil)
}

func (h *Handler) AdminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, token, err := h.auth.Login(username, password)
	if err != nil {
		h.log.WithField("username", username).Warn("console login failed")
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"Error":    "用户名或密码错误",
			"Username": username,
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(auth.TokenTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *Handler) AdminLogout(c *gin.Context) {
	if token, err := c.Cookie(auth.CookieName); err == nil {
		h.auth.Logout(token)
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

// update builds a patch from the live model under the controller's merge
// lock and turns a failed push into a blocking banner for s.
func (h *Handler) update(c *gin.Context, s *auth.Session, build func(*models.SiteData) models.Patch, done string) {
	_, alert := h.site.Update(c.Request.Context(), build)
	if alert != nil {
		s.AddFlash(alert.Message)
		return
	}
	s.AddFlash(done)
}

func (h *Handler) apply(c *gin.Context, s *auth.Session, patch models.Patch, done string) {
	h.update(c, s, func(*models.SiteData) models.Patch { return patch }, done)
}

func viewURL(view string) string {
	return "/admin?view=" + view
}

type editPage struct {
	Collection string
	IsNew      bool
	Item       any
}

// draft is a session edit buffer.
type draft struct {
	item  any
	isNew bool
}

// NewItem opens an edit buffer holding a fresh entity.
func (h *Handler) NewItem(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session(c)
		site := h.site.Snapshot()
		now := h.now()

		var item any
		switch collection {
		case editor.News:
			item = editor.NewNewsDraft(now, site.News)
		case editor.Products:
			item = editor.NewProductDraft(now, site.Products)
		case editor.Cases:
			item = editor.NewCaseDraft(now, site.Cases)
		}
		s.SetDraft(collection, draft{item: item, isNew: true})

		h.console(c, http.StatusOK, "admin_edit.html", s, collection, editPage{
			Collection: collection,
			IsNew:      true,
			Item:       item,
		})
	}
}

// EditItem opens an edit buffer holding a copy of an existing entity.
func (h *Handler) EditItem(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session(c)
		item, ok := h.findItem(collection, c.Param("id"))
		if !ok {
			s.AddFlash("未找到要编辑的内容")
			c.Redirect(http.StatusSeeOther, viewURL(collection))
			return
		}
		s.SetDraft(collection, draft{item: item})

		h.console(c, http.StatusOK, "admin_edit.html", s, collection, editPage{
			Collection: collection,
			Item:       item,
		})
	}
}

func (h *Handler) findItem(collection, id string) (any, bool) {
	site := h.site.Snapshot()
	switch collection {
	case editor.News:
		return site.FindNews(id)
	case editor.Products:
		return site.FindProduct(id)
	case editor.Cases:
		return site.FindCase(id)
	}
	return nil, false
}

// SaveItem confirms the session's edit buffer: the submitted form is laid
// over the buffered entity, which is then added to its collection (new) or
// replaces its namesake (edit).
func (h *Handler) SaveItem(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session(c)
		v, ok := s.Draft(collection)
		buf, isDraft := v.(draft)
		if !ok || !isDraft {
			s.AddFlash("编辑已失效，请重新打开")
			c.Redirect(http.StatusSeeOther, viewURL(collection))
			return
		}

		item := fillItem(c, buf.item)
		if item == nil {
			c.Redirect(http.StatusSeeOther, viewURL(collection))
			return
		}
		now := h.now()

		s.ClearDraft(collection)
		h.update(c, s, func(site *models.SiteData) models.Patch {
			return savePatch(site, item, buf.isNew, now)
		}, "已保存至服务器")
		c.Redirect(http.StatusSeeOther, viewURL(collection))
	}
}

// fillItem lays the submitted form over a buffered entity.
func fillItem(c *gin.Context, item any) any {
	switch d := item.(type) {
	case models.NewsItem:
		d.Title = c.PostForm("title")
		d.Summary = c.PostForm("summary")
		d.Content = c.PostForm("content")
		d.ImageURL = c.PostForm("imageUrl")
		d.Date = c.DefaultPostForm("date", d.Date)
		d.IsPinned = cast.ToBool(c.PostForm("isPinned"))
		return d
	case models.Product:
		d.Name = c.PostForm("name")
		d.Description = c.PostForm("description")
		d.ImageURL = c.PostForm("imageUrl")
		d.FullSpecs = c.PostForm("fullSpecs")
		d.Features = editor.SplitLines(c.PostForm("features"))
		return d
	case models.CaseStudy:
		d.Name = c.PostForm("name")
		d.Industry = c.PostForm("industry")
		d.LogoURL = c.PostForm("logoUrl")
		d.Summary = c.PostForm("summary")
		d.Content = c.PostForm("content")
		d.ImageURL = c.PostForm("imageUrl")
		d.RelatedProducts = editor.SplitLines(c.PostForm("relatedProducts"))
		return d
	}
	return nil
}

// savePatch puts item into its collection as it is now. A new item whose id
// was taken in the meantime gets a fresh one; an edited item that was
// deleted in the meantime is dropped.
func savePatch(site *models.SiteData, item any, isNew bool, now time.Time) models.Patch {
	var patch models.Patch
	switch d := item.(type) {
	case models.NewsItem:
		if isNew {
			if editor.Contains(site.News, d.ID) {
				d.ID = editor.NewNewsDraft(now, site.News).ID
			}
			news := editor.Upsert(site.News, d, true)
			patch.News = &news
		} else if editor.Contains(site.News, d.ID) {
			news := editor.Replace(site.News, d)
			patch.News = &news
		}
	case models.Product:
		if isNew {
			if editor.Contains(site.Products, d.ID) {
				d.ID = editor.NewProductDraft(now, site.Products).ID
			}
			products := editor.Upsert(site.Products, d, false)
			patch.Products = &products
		} else if editor.Contains(site.Products, d.ID) {
			products := editor.Replace(site.Products, d)
			patch.Products = &products
		}
	case models.CaseStudy:
		if isNew {
			if editor.Contains(site.Cases, d.ID) {
				d.ID = editor.NewCaseDraft(now, site.Cases).ID
			}
			cases := editor.Upsert(site.Cases, d, false)
			patch.Cases = &cases
		} else if editor.Contains(site.Cases, d.ID) {
			cases := editor.Replace(site.Cases, d)
			patch.Cases = &cases
		}
	}
	return patch
}

// ConfirmDelete asks before anything is removed.
func (h *Handler) ConfirmDelete(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session(c)
		id := c.Param("id")
		item, ok := h.findItem(collection, id)
		if !ok {
			s.AddFlash("未找到要删除的内容")
			c.Redirect(http.StatusSeeOther, viewURL(collection))
			return
		}
		h.console(c, http.StatusOK, "admin_confirm.html", s, collection, gin.H{
			"Collection": collection,
			"ID":         id,
			"Label":      itemLabel(item),
		})
	}
}

func (h *Handler) DeleteItem(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session(c)
		if c.PostForm("confirm") != "yes" {
			c.Redirect(http.StatusSeeOther, viewURL(collection))
			return
		}

		id := c.Param("id")
		found := false
		_, alert := h.site.Update(c.Request.Context(), func(site *models.SiteData) models.Patch {
			var patch models.Patch
			switch collection {
			case editor.News:
				if found = editor.Contains(site.News, id); found {
					news := editor.Remove(site.News, id)
					patch.News = &news
				}
			case editor.Products:
				if found = editor.Contains(site.Products, id); found {
					products := editor.Remove(site.Products, id)
					patch.Products = &products
				}
			case editor.Cases:
				if found = editor.Contains(site.Cases, id); found {
					cases := editor.Remove(site.Cases, id)
					patch.Cases = &cases
				}
			}
			return patch
		})
		switch {
		case alert != nil:
			s.AddFlash(alert.Message)
		case !found:
			s.AddFlash("未找到要删除的内容")
		default:
			s.AddFlash("已删除")
		}
		c.Redirect(http.StatusSeeOther, viewURL(collection))
	}
}

func itemLabel(item any) string {
	switch v := item.(type) {
	case models.NewsItem:
		return v.Title
	case models.Product:
		return v.Name
	case models.CaseStudy:
		return fmt.Sprintf("%s（%s）", v.Name, v.Industry)
	}
	return ""
}

// SaveBasic stores the text blocks of the about and products pages.
// Tech features and industry details arrive as parallel form arrays in
// display order.
func (h *Handler) SaveBasic(c *gin.Context) {
	s := session(c)

	companyIntro := c.PostForm("companyIntro")
	techContent := c.PostForm("techContent")
	industryContent := c.PostForm("industryContent")
	statValue := c.PostForm("industryStatValue")
	statLabel := c.PostForm("industryStatLabel")
	imageURL := c.PostForm("industryImageUrl")
	tags := editor.SplitLines(c.PostForm("industryTags"))

	titles := c.PostFormArray("techTitle")
	items := c.PostFormArray("techItems")
	features := make([]models.TechFeature, 0, len(titles))
	for i, title := range titles {
		f := models.TechFeature{Title: title, Items: []string{}}
		if i < len(items) {
			f.Items = editor.SplitLines(items[i])
		}
		features = append(features, f)
	}

	ids := c.PostFormArray("industryId")
	names := c.PostFormArray("industryName")
	descriptions := c.PostFormArray("industryDescription")
	lists := c.PostFormArray("industryFeatures")
	details := make([]models.IndustryDetail, 0, len(ids))
	for i, id := range ids {
		d := models.IndustryDetail{ID: id, Features: []string{}}
		if i < len(names) {
			d.Name = names[i]
		}
		if i < len(descriptions) {
			d.Description = descriptions[i]
		}
		if i < len(lists) {
			d.Features = editor.SplitLines(lists[i])
		}
		details = append(details, d)
	}

	h.apply(c, s, models.Patch{
		CompanyIntro:      &companyIntro,
		TechContent:       &techContent,
		TechFeatures:      &features,
		IndustryContent:   &industryContent,
		IndustryDetails:   &details,
		IndustryTags:      &tags,
		IndustryStatValue: &statValue,
		IndustryStatLabel: &statLabel,
		IndustryImageURL:  &imageURL,
	}, "内容已保存")
	c.Redirect(http.StatusSeeOther, viewURL("basic"))
}

func (h *Handler) SaveContact(c *gin.Context) {
	s := session(c)
	contact := models.ContactInfo{
		Address: c.PostForm("address"),
		Phone:   c.PostForm("phone"),
		Email:   c.PostForm("email"),
	}
	h.apply(c, s, models.Patch{Contact: &contact}, "联系信息已保存")
	c.Redirect(http.StatusSeeOther, viewURL("basic"))
}

// SaveSettings changes the console credentials. An empty password keeps
// the current one.
func (h *Handler) SaveSettings(c *gin.Context) {
	s := session(c)
	username := c.PostForm("username")

	var hash string
	if password := c.PostForm("password"); password != "" {
		var err error
		if hash, err = auth.HashPassword(password); err != nil {
			h.log.WithError(err).Error("hash new admin password")
			s.AddFlash("密码保存失败")
			c.Redirect(http.StatusSeeOther, viewURL("settings"))
			return
		}
	}

	h.update(c, s, func(site *models.SiteData) models.Patch {
		admin := site.Admin
		admin.Username = username
		if hash != "" {
			admin.PasswordHash = hash
		}
		return models.Patch{Admin: &admin}
	}, "管理员设置已保存")
	c.Redirect(http.StatusSeeOther, viewURL("settings"))
}

// Reconcile throws away unsaved local state and reloads from the store.
func (h *Handler) Reconcile(c *gin.Context) {
	s := session(c)
	if err := h.site.Reconcile(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("console reconcile failed")
		s.AddFlash("无法从服务器重新加载: " + err.Error())
	} else {
		s.AddFlash("已从服务器重新加载")
	}
	c.Redirect(http.StatusSeeOther, viewURL(c.DefaultPostForm("view", "news")))
}
