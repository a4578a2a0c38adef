package seed

import (
	"context"
	"fmt"
	"maps"
)

// Block component names used by the fixture's rich content.
const (
	BlockRichText = "shared.rich-text"
	BlockQuote    = "shared.quote"
	BlockMedia    = "shared.media"
	BlockSlider   = "shared.slider"
)

// transformBlocks replaces the file names media and slider blocks carry with
// references to the stored files, uploading them on first sight. Other block
// kinds pass through untouched.
func (s *Seeder) transformBlocks(ctx context.Context, blocks []map[string]any) ([]map[string]any, error) {
	transformed := make([]map[string]any, 0, len(blocks))
	for _, block := range blocks {
		component, _ := block["component"].(string)
		switch component {
		case BlockMedia:
			name, ok := block["file"].(string)
			if !ok {
				return nil, fmt.Errorf("media block: expected a file name, got %T", block["file"])
			}
			file, err := s.ensureFile(ctx, name)
			if err != nil {
				return nil, err
			}
			blockCopy := maps.Clone(block)
			blockCopy["file"] = fileRef(file)
			transformed = append(transformed, blockCopy)
		case BlockSlider:
			names, err := stringSlice(block["files"])
			if err != nil {
				return nil, fmt.Errorf("slider block: %w", err)
			}
			files, err := s.ensureFiles(ctx, names)
			if err != nil {
				return nil, err
			}
			refs := make([]any, 0, len(files))
			for _, file := range files {
				refs = append(refs, fileRef(file))
			}
			blockCopy := maps.Clone(block)
			blockCopy["files"] = refs
			transformed = append(transformed, blockCopy)
		default:
			transformed = append(transformed, block)
		}
	}
	return transformed, nil
}

func stringSlice(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of file names, got %T", v)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a file name, got %T", item)
		}
		names = append(names, name)
	}
	return names, nil
}
