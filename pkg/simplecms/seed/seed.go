// Package seed imports the bundled example data set through a
// simplecms.Service: media files, content entries for every default
// collection, and public read permissions.
//
// The import runs once per database. A persisted setting records that it
// happened; subsequent runs log and return without touching content.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

//go:embed data
var embeddedData embed.FS

// FirstRunKey is the setting under which the first-run marker is persisted.
const FirstRunKey = "seed.has_run"

// Seeder imports example data into a simplecms.Service.
type Seeder struct {
	svc     simplecms.Service
	fsys    fs.FS
	logger  *slog.Logger
	backend string
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithFS overrides the fixture source. The FS must contain data.json at its
// root and an uploads/ directory holding the media files the fixture names.
func WithFS(fsys fs.FS) Option {
	return func(s *Seeder) {
		s.fsys = fsys
	}
}

// WithLogger sets the logger used for progress and per-record failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// WithStorageBackend names the blob storage backend uploads go to. Empty
// means the service default.
func WithStorageBackend(name string) Option {
	return func(s *Seeder) {
		s.backend = name
	}
}

// New creates a Seeder reading from the embedded fixture unless WithFS
// overrides it.
func New(svc simplecms.Service, opts ...Option) *Seeder {
	s := &Seeder{
		svc:    svc,
		fsys:   embeddedFixture(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// embeddedFixture returns the bundled example data set rooted at data/.
func embeddedFixture() fs.FS {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		// The subdirectory is a compile-time constant into the embedded FS.
		panic(err)
	}
	return sub
}

// Run imports the example data unless a previous run already did.
//
// The first-run marker is written before the import starts, so a failed
// import is not retried on the next start; rerun explicitly (for example
// through the admin endpoint) after fixing the cause.
func (s *Seeder) Run(ctx context.Context) error {
	firstRun, err := s.markFirstRun(ctx)
	if err != nil {
		return fmt.Errorf("first-run marker: %w", err)
	}
	if !firstRun {
		s.logger.Info("seed data has already been imported, skipping import")
		return nil
	}

	s.logger.Info("setting up the example data, this may take a minute")
	if err := s.importSeedData(ctx); err != nil {
		s.logger.Error("could not import seed data", "error", err)
		return err
	}
	s.logger.Info("example data ready to go")
	return nil
}

// HasRun reports whether a seed run has already been recorded.
func (s *Seeder) HasRun(ctx context.Context) (bool, error) {
	value, err := s.svc.GetSetting(ctx, FirstRunKey)
	if errors.Is(err, simplecms.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// markFirstRun reads the marker, writes it, and reports whether this call was
// the first. The write happens before any content is imported.
func (s *Seeder) markFirstRun(ctx context.Context) (bool, error) {
	hasRun, err := s.HasRun(ctx)
	if err != nil {
		return false, err
	}
	if err := s.svc.SetSetting(ctx, FirstRunKey, "true"); err != nil {
		return false, err
	}
	return !hasRun, nil
}

// importSeedData grants public read access, then imports every collection in
// dependency order: articles reference authors and categories, so those come
// first. Individual records that fail to import are logged and skipped.
func (s *Seeder) importSeedData(ctx context.Context) error {
	fixture, err := LoadFixture(s.fsys)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	if err := s.setPublicPermissions(ctx); err != nil {
		return fmt.Errorf("set public permissions: %w", err)
	}

	categories := s.importCategories(ctx, fixture.Categories)
	authors := s.importAuthors(ctx, fixture.Authors)
	s.importArticles(ctx, fixture.Articles, authors, categories)
	s.importGlobal(ctx, fixture.Global)
	s.importAbout(ctx, fixture.About)
	return nil
}
