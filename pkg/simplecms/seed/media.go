package seed

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ensureFile returns the stored file matching the fixture file's
// extension-less name, uploading it from uploads/ only when no file with
// that name exists yet. Fixture data may reference the same image from
// several places; the name lookup keeps each image stored once.
func (s *Seeder) ensureFile(ctx context.Context, name string) (*simplecms.File, error) {
	base := strings.TrimSuffix(name, path.Ext(name))

	existing, err := s.svc.FindFileByName(ctx, base)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, simplecms.ErrFileNotFound) {
		return nil, fmt.Errorf("look up file %q: %w", base, err)
	}

	f, err := s.fsys.Open(path.Join("uploads", name))
	if err != nil {
		return nil, fmt.Errorf("open fixture file %q: %w", name, err)
	}
	defer f.Close()

	file, err := s.svc.UploadFile(ctx, simplecms.UploadFileRequest{
		Name:            name,
		Reader:          f,
		AlternativeText: fmt.Sprintf("An image uploaded to simple-cms called %s", base),
		Caption:         base,
		StorageBackend:  s.backend,
	})
	if err != nil {
		return nil, fmt.Errorf("upload fixture file %q: %w", name, err)
	}

	s.logger.Info("uploaded fixture file", "name", base, "file_id", file.ID)
	return file, nil
}

// ensureFiles runs ensureFile for each name, preserving order.
func (s *Seeder) ensureFiles(ctx context.Context, names []string) ([]*simplecms.File, error) {
	files := make([]*simplecms.File, 0, len(names))
	for _, name := range names {
		file, err := s.ensureFile(ctx, name)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// fileRef is the reference shape embedded into entry data wherever the
// fixture names a media file.
func fileRef(file *simplecms.File) map[string]any {
	return map[string]any{
		"id":   file.ID.String(),
		"name": file.FileName(),
		"url":  file.URL,
		"mime": file.Mime,
	}
}
