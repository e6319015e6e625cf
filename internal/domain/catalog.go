package domain

import (
	"encoding/json"
	"time"
)

type PackageStatus string

const (
	PackageActive PackageStatus = "active"
	PackageDraft  PackageStatus = "draft"
)

// Countries the operator runs tours in; also the public filter values.
var Countries = []string{"rwanda", "kenya", "tanzania", "uganda"}

func IsCountry(c string) bool {
	for _, v := range Countries {
		if v == c {
			return true
		}
	}
	return false
}

type ItineraryStep struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Package struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Country      string          `json:"country"`
	DurationDays int             `json:"durationDays"`
	Price        float64         `json:"price"`
	MinGroup     int             `json:"minGroup"`
	MaxGroup     int             `json:"maxGroup"`
	Featured     bool            `json:"featured"`
	Status       PackageStatus   `json:"status"`
	Overview     string          `json:"overview,omitempty"`
	Itinerary    []ItineraryStep `json:"itinerary"`
	Inclusions   []string        `json:"inclusions"`
	Exclusions   []string        `json:"exclusions"`
	Info         []string        `json:"info"`
	Images       []string        `json:"images"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Visible is the public visibility predicate.
func (p Package) Visible() bool { return p.Status == PackageActive }

type PackagesQuery struct {
	Status  *PackageStatus
	Country string
}

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

type BlogPost struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Author     string          `json:"author"`
	Status     PostStatus      `json:"status"`
	ReadTime   string          `json:"readTime"`
	CoverImage string          `json:"coverImage,omitempty"`
	Excerpt    string          `json:"excerpt,omitempty"`
	Content    json.RawMessage `json:"content"` // delta document
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (b BlogPost) Visible() bool { return b.Status == PostPublished }

type PostsQuery struct {
	Status   *PostStatus
	Category string
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

const MaxHeroPosition = 3

type HeroMedia struct {
	Position  int       `json:"position"`
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}
