package seed_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-cms/pkg/simplecms/seed"
)

func TestLoadFixture(t *testing.T) {
	fixture, err := seed.LoadFixture(fixtureFS(partialFixture))
	require.NoError(t, err)

	assert.Len(t, fixture.Categories, 1)
	assert.Len(t, fixture.Authors, 2)
	assert.Len(t, fixture.Articles, 2)
	require.NotNil(t, fixture.Global)
	assert.Equal(t, "share.svg", fixture.Global.DefaultSeo.ShareImage)
	require.NotNil(t, fixture.About)
	assert.Equal(t, "About", fixture.About.Title)
}

func TestLoadFixtureErrors(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "missing data.json",
			fsys:    fstest.MapFS{},
			wantErr: "read data.json",
		},
		{
			name:    "malformed json",
			fsys:    fixtureFS(`{"categories": [`),
			wantErr: "decode data.json",
		},
		{
			name:    "no categories",
			fsys:    fixtureFS(`{"categories": [], "authors": [{"name": "a"}], "articles": [{"slug": "s"}], "global": {}, "about": {}}`),
			wantErr: "no categories",
		},
		{
			name:    "no global settings",
			fsys:    fixtureFS(`{"categories": [{"slug": "c"}], "authors": [{"name": "a"}], "articles": [{"slug": "s"}], "about": {}}`),
			wantErr: "no global settings",
		},
		{
			name:    "category without slug",
			fsys:    fixtureFS(`{"categories": [{"name": "c"}], "authors": [{"name": "a"}], "articles": [{"slug": "s"}], "global": {}, "about": {}}`),
			wantErr: "has no slug",
		},
		{
			name:    "author without name",
			fsys:    fixtureFS(`{"categories": [{"slug": "c"}], "authors": [{"email": "a@b.c"}], "articles": [{"slug": "s"}], "global": {}, "about": {}}`),
			wantErr: "has no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.LoadFixture(tt.fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHasRunBeforeFirstRun(t *testing.T) {
	svc := setupTestService(t)
	seeder := seed.New(svc, seed.WithLogger(quietLogger()))

	hasRun, err := seeder.HasRun(context.Background())
	require.NoError(t, err)
	assert.False(t, hasRun)
}
