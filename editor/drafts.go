package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jiahe-site/models"
)

const DateLayout = "2006-01-02"

// Collection names as used in console routes and session edit buffers.
const (
	News     = "news"
	Products = "products"
	Cases    = "cases"
)

// NewNewsDraft seeds an empty news item whose id is the creation time in
// milliseconds, moved forward until it is free in existing.
func NewNewsDraft(now time.Time, existing []models.NewsItem) models.NewsItem {
	ms := now.UnixMilli()
	return models.NewsItem{
		ID:        freeID(existing, "", ms),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/800/600", ms),
		Date:      now.Format(DateLayout),
		CreatedAt: ms,
	}
}

func NewProductDraft(now time.Time, existing []models.Product) models.Product {
	ms := now.UnixMilli()
	return models.Product{
		ID:       freeID(existing, "p", ms),
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%d/800/600", ms),
		Features: []string{},
	}
}

func NewCaseDraft(now time.Time, existing []models.CaseStudy) models.CaseStudy {
	ms := now.UnixMilli()
	return models.CaseStudy{
		ID:              freeID(existing, "c", ms),
		LogoURL:         fmt.Sprintf("https://picsum.photos/seed/logo%d/200/200", ms),
		ImageURL:        fmt.Sprintf("https://picsum.photos/seed/full%d/800/400", ms),
		RelatedProducts: []string{},
	}
}

func freeID[T Entity](existing []T, prefix string, ms int64) string {
	for {
		id := prefix + strconv.FormatInt(ms, 10)
		if !Contains(existing, id) {
			return id
		}
		ms++
	}
}

// SplitLines turns a textarea into a list: one entry per line as typed,
// whitespace-only lines dropped, order kept. Browsers submit textareas with
// CRLF line breaks, which count as plain newlines.
func SplitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// JoinLines is the inverse of SplitLines for filling a textarea.
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}
