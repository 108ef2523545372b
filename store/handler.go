package store

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"jiahe-site/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxDocumentSize bounds a single write.
const maxDocumentSize = 8 << 20

// Handler serves the store wire protocol: GET returns the whole document,
// PUT (or POST) replaces it and answers {success, message}.
type Handler struct {
	docs  Documents
	log   *logrus.Logger
	token string
}

// NewHandler builds the endpoint. A non-empty token must be presented as a
// Bearer credential on every request.
func NewHandler(docs Documents, log *logrus.Logger, token string) *Handler {
	return &Handler{docs: docs, log: log, token: token}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/site-data", h.requireToken)
	g.GET("", h.Get)
	g.PUT("", h.Put)
	g.POST("", h.Put)
}

func (h *Handler) requireToken(c *gin.Context) {
	if h.token == "" {
		c.Next()
		return
	}
	got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "store token required",
			"success": false,
			"message": "store token required",
		})
		return
	}
	c.Next()
}

func (h *Handler) Get(c *gin.Context) {
	doc, err := h.docs.Load(c.Request.Context())
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Errorf("store read failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store read failed"})
		return
	}

	c.Header(VersionHeader, formatVersion(doc.Version))
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc.Payload)
}

func (h *Handler) Put(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StoreResult{Message: "could not read request body"})
		return
	}

	// no field validation, only re-encode so the stored payload is canonical
	var data models.SiteData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.JSON(http.StatusBadRequest, models.StoreResult{Message: "body is not valid site content JSON"})
		return
	}
	payload, err := json.Marshal(&data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.StoreResult{Message: "could not encode site content"})
		return
	}

	version, err := h.docs.Save(c.Request.Context(), payload, parseVersion(c.GetHeader(VersionHeader)))
	if errors.Is(err, ErrVersionConflict) {
		c.JSON(http.StatusConflict, models.StoreResult{Message: ErrVersionConflict.Error() + "; reload before saving"})
		return
	}
	if err != nil {
		h.log.Errorf("store write failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.StoreResult{Message: "store write failed, check that the data directory is writable"})
		return
	}

	c.Header(VersionHeader, formatVersion(version))
	c.JSON(http.StatusOK, models.StoreResult{Success: true, Message: "saved", Version: version})
}
