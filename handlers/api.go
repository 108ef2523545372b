package handlers

import (
	"net/http"
	"strings"

	"jiahe-site/auth"
	"jiahe-site/models"
	"jiahe-site/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// APILogin issues a bearer token for the admin API.
func (h *Handler) APILogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrBind, err.Error())
		return
	}

	s, token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		response.Fail(c, response.ErrInvalidCredentials, nil)
		return
	}

	response.Success(c, gin.H{
		"token":     token,
		"username":  s.Username(),
		"expiresIn": int(auth.TokenTTL.Seconds()),
	})
}

func (h *Handler) APILogout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token != "" {
		h.auth.Logout(token)
	}
	response.Success(c, nil)
}

func (h *Handler) GetSiteData(c *gin.Context) {
	response.Success(c, gin.H{
		"version": h.site.Version(),
		"data":    h.site.Snapshot(),
	})
}

// PatchSiteData merges a partial document into the live site data. A
// plaintext admin password in the patch is hashed before it is applied.
func (h *Handler) PatchSiteData(c *gin.Context) {
	var patch models.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Fail(c, response.ErrBind, err.Error())
		return
	}
	if patch.IsEmpty() {
		response.FailWithMessage(c, response.ErrValidation, "patch names no field", nil)
		return
	}

	if patch.Admin != nil {
		admin := *patch.Admin
		if _, err := auth.UpgradeLegacyPassword(&admin); err != nil {
			response.Fail(c, response.ErrUnknown, nil)
			return
		}
		patch.Admin = &admin
	}

	next, alert := h.site.ApplyPatch(c.Request.Context(), patch)
	if alert != nil {
		// the change is live locally even though the store refused it
		response.FailWithMessage(c, response.ErrSaveFailed, alert.Message, gin.H{
			"version": h.site.Version(),
			"data":    next,
		})
		return
	}

	response.Success(c, gin.H{
		"version": h.site.Version(),
		"fields":  patch.Fields(),
		"data":    next,
	})
}

func (h *Handler) APIReconcile(c *gin.Context) {
	if err := h.site.Reconcile(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("api reconcile failed")
		response.FailWithMessage(c, response.ErrStoreUnavailable, err.Error(), nil)
		return
	}
	response.Success(c, gin.H{
		"version": h.site.Version(),
		"data":    h.site.Snapshot(),
	})
}

// Alerts lists failed saves; ?clear=true also empties the log.
func (h *Handler) Alerts(c *gin.Context) {
	if cast.ToBool(c.Query("clear")) {
		response.Success(c, h.site.TakeAlerts())
		return
	}
	response.Success(c, h.site.Alerts())
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"ready":   h.site.IsReady(),
		"version": h.site.Version(),
	})
}
