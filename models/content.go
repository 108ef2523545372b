package models

type NewsItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Date      string `json:"date"`
	Clicks    int64  `json:"clicks"`
	IsPinned  bool   `json:"isPinned"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds
}

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	FullSpecs   string   `json:"fullSpecs"`
	Features    []string `json:"features"`
}

type CaseStudy struct {
	ID              string   `json:"id"`
	Industry        string   `json:"industry"`
	Name            string   `json:"name"`
	LogoURL         string   `json:"logoUrl"`
	Summary         string   `json:"summary"`
	Content         string   `json:"content"`
	ImageURL        string   `json:"imageUrl"`
	RelatedProducts []string `json:"relatedProducts"`
}

type TechFeature struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type IndustryDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// AdminConfig holds the console credentials. PasswordHash is a bcrypt hash;
// documents written by older versions of the store may still carry the
// plaintext password here and are upgraded on hydration.
type AdminConfig struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// GetID implementations let the editor treat the three collections alike.

func (n NewsItem) GetID() string  { return n.ID }
func (p Product) GetID() string   { return p.ID }
func (c CaseStudy) GetID() string { return c.ID }
