package models

import (
	"slices"
	"sort"
)

const (
	HomeNewsLimit   = 5
	NewsPerPage     = 10
	CarouselVisible = 3
	AllIndustries   = "all"
)

// TopNews orders news pinned-first, then by CreatedAt descending, and keeps
// at most limit items. The stored order is untouched.
func (d *SiteData) TopNews(limit int) []NewsItem {
	sorted := slices.Clone(d.News)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.CreatedAt > b.CreatedAt
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// industryNames returns each distinct industry once, in first-appearance order.
func (d *SiteData) industryNames() []string {
	seen := make(map[string]bool, len(d.Cases))
	var names []string
	for _, c := range d.Cases {
		if seen[c.Industry] {
			continue
		}
		seen[c.Industry] = true
		names = append(names, c.Industry)
	}
	return names
}

// IndustryShowcase picks the first case of every distinct industry.
func (d *SiteData) IndustryShowcase() []CaseStudy {
	names := d.industryNames()
	showcase := make([]CaseStudy, 0, len(names))
	for _, name := range names {
		for _, c := range d.Cases {
			if c.Industry == name {
				showcase = append(showcase, c)
				break
			}
		}
	}
	return showcase
}

// Industries is the case filter list: "all" followed by the distinct industries.
func (d *SiteData) Industries() []string {
	return append([]string{AllIndustries}, d.industryNames()...)
}

func (d *SiteData) CasesByIndustry(industry string) []CaseStudy {
	if industry == "" || industry == AllIndustries {
		return slices.Clone(d.Cases)
	}
	var out []CaseStudy
	for _, c := range d.Cases {
		if c.Industry == industry {
			out = append(out, c)
		}
	}
	return out
}

// NewsPage returns the 1-based page of news in stored order together with
// the page actually served and the total page count. Pages outside
// [1, total] are clamped.
func (d *SiteData) NewsPage(page, perPage int) (items []NewsItem, current, total int) {
	if perPage <= 0 {
		perPage = NewsPerPage
	}
	total = (len(d.News) + perPage - 1) / perPage
	current = page
	if current > total {
		current = total
	}
	if current < 1 {
		current = 1
	}
	start := (current - 1) * perPage
	if start >= len(d.News) {
		return nil, current, total
	}
	end := min(start+perPage, len(d.News))
	return slices.Clone(d.News[start:end]), current, total
}

func (d *SiteData) FindNews(id string) (NewsItem, bool) {
	for _, n := range d.News {
		if n.ID == id {
			return n, true
		}
	}
	return NewsItem{}, false
}

func (d *SiteData) FindProduct(id string) (Product, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (d *SiteData) FindCase(id string) (CaseStudy, bool) {
	for _, c := range d.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return CaseStudy{}, false
}

// Carousel is the index state of a strip showing Visible of Count items.
type Carousel struct {
	Count   int
	Visible int
	Index   int
}

// NewCarousel clamps index into [0, MaxIndex].
func NewCarousel(count, visible, index int) Carousel {
	c := Carousel{Count: count, Visible: visible}
	c.Index = max(0, min(index, c.MaxIndex()))
	return c
}

func (c Carousel) MaxIndex() int {
	return max(0, c.Count-c.Visible)
}

// Next advances by one and wraps to 0 past the last position.
func (c Carousel) Next() int {
	if c.Index >= c.MaxIndex() {
		return 0
	}
	return c.Index + 1
}

// Prev steps back by one and wraps to the last position below 0.
func (c Carousel) Prev() int {
	if c.Index <= 0 {
		return c.MaxIndex()
	}
	return c.Index - 1
}

// Positions lists every index a pager can jump to.
func (c Carousel) Positions() []int {
	n := c.MaxIndex() + 1
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Window returns the items visible at the current index.
func (c Carousel) Window(items []CaseStudy) []CaseStudy {
	if c.Index >= len(items) {
		return nil
	}
	end := min(c.Index+c.Visible, len(items))
	return items[c.Index:end]
}
