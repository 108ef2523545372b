package models

import "slices"

// SiteData is the whole editable content of the site. Exactly one value is
// live at a time and it is owned by sitedata.Controller.
type SiteData struct {
	News              []NewsItem       `json:"news"`
	Products          []Product        `json:"products"`
	Cases             []CaseStudy      `json:"cases"`
	CompanyIntro      string           `json:"companyIntro"`
	TechContent       string           `json:"techContent"`
	TechFeatures      []TechFeature    `json:"techFeatures"`
	IndustryContent   string           `json:"industryContent"`
	IndustryDetails   []IndustryDetail `json:"industryDetails"`
	IndustryTags      []string         `json:"industryTags"`
	IndustryStatValue string           `json:"industryStatValue"`
	IndustryStatLabel string           `json:"industryStatLabel"`
	IndustryImageURL  string           `json:"industryImageUrl"`
	Admin             AdminConfig      `json:"admin"`
	Contact           ContactInfo      `json:"contact"`
}

// Patch is a partial SiteData. Nil fields are left untouched by Merge.
type Patch struct {
	News              *[]NewsItem       `json:"news,omitempty"`
	Products          *[]Product        `json:"products,omitempty"`
	Cases             *[]CaseStudy      `json:"cases,omitempty"`
	CompanyIntro      *string           `json:"companyIntro,omitempty"`
	TechContent       *string           `json:"techContent,omitempty"`
	TechFeatures      *[]TechFeature    `json:"techFeatures,omitempty"`
	IndustryContent   *string           `json:"industryContent,omitempty"`
	IndustryDetails   *[]IndustryDetail `json:"industryDetails,omitempty"`
	IndustryTags      *[]string         `json:"industryTags,omitempty"`
	IndustryStatValue *string           `json:"industryStatValue,omitempty"`
	IndustryStatLabel *string           `json:"industryStatLabel,omitempty"`
	IndustryImageURL  *string           `json:"industryImageUrl,omitempty"`
	Admin             *AdminConfig      `json:"admin,omitempty"`
	Contact           *ContactInfo      `json:"contact,omitempty"`
}

// IsEmpty reports whether the patch names no field at all.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the JSON names of the fields the patch sets.
func (p Patch) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.News != nil, "news")
	add(p.Products != nil, "products")
	add(p.Cases != nil, "cases")
	add(p.CompanyIntro != nil, "companyIntro")
	add(p.TechContent != nil, "techContent")
	add(p.TechFeatures != nil, "techFeatures")
	add(p.IndustryContent != nil, "industryContent")
	add(p.IndustryDetails != nil, "industryDetails")
	add(p.IndustryTags != nil, "industryTags")
	add(p.IndustryStatValue != nil, "industryStatValue")
	add(p.IndustryStatLabel != nil, "industryStatLabel")
	add(p.IndustryImageURL != nil, "industryImageUrl")
	add(p.Admin != nil, "admin")
	add(p.Contact != nil, "contact")
	return fields
}

// Merge returns a new SiteData with the top-level fields named by patch
// replaced. Fields the patch does not name keep the values of current.
// current is not modified.
func Merge(current *SiteData, patch Patch) *SiteData {
	next := *current

	if patch.News != nil {
		next.News = slices.Clone(*patch.News)
	}
	if patch.Products != nil {
		next.Products = slices.Clone(*patch.Products)
	}
	if patch.Cases != nil {
		next.Cases = slices.Clone(*patch.Cases)
	}
	if patch.CompanyIntro != nil {
		next.CompanyIntro = *patch.CompanyIntro
	}
	if patch.TechContent != nil {
		next.TechContent = *patch.TechContent
	}
	if patch.TechFeatures != nil {
		next.TechFeatures = slices.Clone(*patch.TechFeatures)
	}
	if patch.IndustryContent != nil {
		next.IndustryContent = *patch.IndustryContent
	}
	if patch.IndustryDetails != nil {
		next.IndustryDetails = slices.Clone(*patch.IndustryDetails)
	}
	if patch.IndustryTags != nil {
		next.IndustryTags = slices.Clone(*patch.IndustryTags)
	}
	if patch.IndustryStatValue != nil {
		next.IndustryStatValue = *patch.IndustryStatValue
	}
	if patch.IndustryStatLabel != nil {
		next.IndustryStatLabel = *patch.IndustryStatLabel
	}
	if patch.IndustryImageURL != nil {
		next.IndustryImageURL = *patch.IndustryImageURL
	}
	if patch.Admin != nil {
		next.Admin = *patch.Admin
	}
	if patch.Contact != nil {
		next.Contact = *patch.Contact
	}

	return &next
}

// Clone deep-copies d, including the string slices nested in entities.
func (d *SiteData) Clone() *SiteData {
	if d == nil {
		return nil
	}
	cp := *d

	cp.News = slices.Clone(d.News)

	cp.Products = slices.Clone(d.Products)
	for i := range cp.Products {
		cp.Products[i].Features = slices.Clone(cp.Products[i].Features)
	}

	cp.Cases = slices.Clone(d.Cases)
	for i := range cp.Cases {
		cp.Cases[i].RelatedProducts = slices.Clone(cp.Cases[i].RelatedProducts)
	}

	cp.TechFeatures = slices.Clone(d.TechFeatures)
	for i := range cp.TechFeatures {
		cp.TechFeatures[i].Items = slices.Clone(cp.TechFeatures[i].Items)
	}

	cp.IndustryDetails = slices.Clone(d.IndustryDetails)
	for i := range cp.IndustryDetails {
		cp.IndustryDetails[i].Features = slices.Clone(cp.IndustryDetails[i].Features)
	}

	cp.IndustryTags = slices.Clone(d.IndustryTags)
	return &cp
}
