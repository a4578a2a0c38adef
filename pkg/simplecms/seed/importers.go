package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// importCategories creates one published entry per category and returns the
// created entry IDs keyed by slug, for resolving article references.
func (s *Seeder) importCategories(ctx context.Context, categories []CategoryFixture) map[string]uuid.UUID {
	created := make(map[string]uuid.UUID, len(categories))
	for _, category := range categories {
		entry, err := s.svc.CreateEntry(ctx, simplecms.CreateEntryRequest{
			Collection: simplecms.CollectionCategory,
			Slug:       category.Slug,
			Data: map[string]any{
				"name":        category.Name,
				"slug":        category.Slug,
				"description": category.Description,
			},
			Status: simplecms.EntryStatusPublished,
		})
		if err != nil {
			s.logger.Error("could not import category", "slug", category.Slug, "error", err)
			continue
		}
		created[category.Slug] = entry.ID
	}
	return created
}

// importAuthors uploads each author's avatar, creates one published entry per
// author, and returns the created entry IDs keyed by author name.
func (s *Seeder) importAuthors(ctx context.Context, authors []AuthorFixture) map[string]uuid.UUID {
	created := make(map[string]uuid.UUID, len(authors))
	for _, author := range authors {
		avatar, err := s.ensureFile(ctx, author.Avatar)
		if err != nil {
			s.logger.Error("could not import author", "name", author.Name, "error", err)
			continue
		}
		entry, err := s.svc.CreateEntry(ctx, simplecms.CreateEntryRequest{
			Collection: simplecms.CollectionAuthor,
			Data: map[string]any{
				"name":   author.Name,
				"email":  author.Email,
				"avatar": fileRef(avatar),
			},
			Status: simplecms.EntryStatusPublished,
		})
		if err != nil {
			s.logger.Error("could not import author", "name", author.Name, "error", err)
			continue
		}
		created[author.Name] = entry.ID
	}
	return created
}

// importArticles creates one published entry per article. Author and category
// references resolve against the maps built earlier in the run; an article
// whose references or files cannot be resolved is logged and skipped.
func (s *Seeder) importArticles(ctx context.Context, articles []ArticleFixture, authors, categories map[string]uuid.UUID) {
	for _, article := range articles {
		authorID, ok := authors[article.Author]
		if !ok {
			s.logger.Error("could not import article", "slug", article.Slug,
				"error", fmt.Errorf("unknown author %q", article.Author))
			continue
		}
		categoryID, ok := categories[article.Category]
		if !ok {
			s.logger.Error("could not import article", "slug", article.Slug,
				"error", fmt.Errorf("unknown category %q", article.Category))
			continue
		}

		cover, err := s.ensureFile(ctx, article.Cover)
		if err != nil {
			s.logger.Error("could not import article", "slug", article.Slug, "error", err)
			continue
		}
		blocks, err := s.transformBlocks(ctx, article.Blocks)
		if err != nil {
			s.logger.Error("could not import article", "slug", article.Slug, "error", err)
			continue
		}

		_, err = s.svc.CreateEntry(ctx, simplecms.CreateEntryRequest{
			Collection: simplecms.CollectionArticle,
			Slug:       article.Slug,
			Data: map[string]any{
				"title":       article.Title,
				"description": article.Description,
				"slug":        article.Slug,
				"cover":       fileRef(cover),
				"author":      map[string]any{"id": authorID.String(), "name": article.Author},
				"category":    map[string]any{"id": categoryID.String(), "slug": article.Category},
				"blocks":      blocks,
			},
			Status: simplecms.EntryStatusPublished,
		})
		if err != nil {
			s.logger.Error("could not import article", "slug", article.Slug, "error", err)
		}
	}
}

// importGlobal creates the site-wide settings single type with its favicon
// and default share image.
func (s *Seeder) importGlobal(ctx context.Context, global *GlobalFixture) {
	favicon, err := s.ensureFile(ctx, global.Favicon)
	if err != nil {
		s.logger.Error("could not import global settings", "error", err)
		return
	}
	shareImage, err := s.ensureFile(ctx, global.DefaultSeo.ShareImage)
	if err != nil {
		s.logger.Error("could not import global settings", "error", err)
		return
	}

	_, err = s.svc.CreateEntry(ctx, simplecms.CreateEntryRequest{
		Collection: simplecms.CollectionGlobal,
		Data: map[string]any{
			"siteName":        global.SiteName,
			"siteDescription": global.SiteDescription,
			"favicon":         fileRef(favicon),
			"defaultSeo": map[string]any{
				"metaTitle":       global.DefaultSeo.MetaTitle,
				"metaDescription": global.DefaultSeo.MetaDescription,
				"shareImage":      fileRef(shareImage),
			},
		},
		Status: simplecms.EntryStatusPublished,
	})
	if err != nil {
		s.logger.Error("could not import global settings", "error", err)
	}
}

// importAbout creates the about page single type.
func (s *Seeder) importAbout(ctx context.Context, about *AboutFixture) {
	blocks, err := s.transformBlocks(ctx, about.Blocks)
	if err != nil {
		s.logger.Error("could not import about page", "error", err)
		return
	}

	_, err = s.svc.CreateEntry(ctx, simplecms.CreateEntryRequest{
		Collection: simplecms.CollectionAbout,
		Data: map[string]any{
			"title":  about.Title,
			"blocks": blocks,
		},
		Status: simplecms.EntryStatusPublished,
	})
	if err != nil {
		s.logger.Error("could not import about page", "error", err)
	}
}
