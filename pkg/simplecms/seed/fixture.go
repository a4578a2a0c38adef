package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

// Fixture mirrors data.json: the example records imported on first run. File
// fields name files under the fixture's uploads/ directory.
type Fixture struct {
	Categories []CategoryFixture `json:"categories"`
	Authors    []AuthorFixture   `json:"authors"`
	Articles   []ArticleFixture  `json:"articles"`
	Global     *GlobalFixture    `json:"global"`
	About      *AboutFixture     `json:"about"`
}

// CategoryFixture is one category record.
type CategoryFixture struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// AuthorFixture is one author record. Articles reference authors by Name.
type AuthorFixture struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// ArticleFixture is one article record. Author holds an author name and
// Category a category slug; both must resolve to records imported earlier in
// the same run.
type ArticleFixture struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Slug        string           `json:"slug"`
	Cover       string           `json:"cover"`
	Author      string           `json:"author"`
	Category    string           `json:"category"`
	Blocks      []map[string]any `json:"blocks"`
}

// GlobalFixture holds the site-wide settings single type.
type GlobalFixture struct {
	SiteName        string            `json:"siteName"`
	SiteDescription string            `json:"siteDescription"`
	Favicon         string            `json:"favicon"`
	DefaultSeo      DefaultSeoFixture `json:"defaultSeo"`
}

// DefaultSeoFixture is the SEO component embedded in the global settings.
type DefaultSeoFixture struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	ShareImage      string `json:"shareImage"`
}

// AboutFixture holds the about page single type.
type AboutFixture struct {
	Title  string           `json:"title"`
	Blocks []map[string]any `json:"blocks"`
}

// LoadFixture reads and decodes data.json from the fixture FS.
func LoadFixture(fsys fs.FS) (*Fixture, error) {
	raw, err := fs.ReadFile(fsys, "data.json")
	if err != nil {
		return nil, fmt.Errorf("read data.json: %w", err)
	}

	var fixture Fixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("decode data.json: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &fixture, nil
}

// Validate checks the minimum shape the importers rely on.
func (f *Fixture) Validate() error {
	if len(f.Categories) == 0 {
		return errors.New("no categories")
	}
	if len(f.Authors) == 0 {
		return errors.New("no authors")
	}
	if len(f.Articles) == 0 {
		return errors.New("no articles")
	}
	if f.Global == nil {
		return errors.New("no global settings")
	}
	if f.About == nil {
		return errors.New("no about page")
	}
	for i, category := range f.Categories {
		if category.Slug == "" {
			return fmt.Errorf("category %d has no slug", i)
		}
	}
	for i, author := range f.Authors {
		if author.Name == "" {
			return fmt.Errorf("author %d has no name", i)
		}
	}
	for i, article := range f.Articles {
		if article.Slug == "" {
			return fmt.Errorf("article %d has no slug", i)
		}
	}
	return nil
}
