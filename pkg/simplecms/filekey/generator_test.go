package filekey

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestFlatGenerator(t *testing.T) {
	gen := NewFlatGenerator()
	fileID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "without filename",
			filename: "",
			expected: "uploads/123e4567-e89b-12d3-a456-426614174000",
		},
		{
			name:     "with filename",
			filename: "document.pdf",
			expected: "uploads/123e4567-e89b-12d3-a456-426614174000/document.pdf",
		},
		{
			name:     "filename is sanitized",
			filename: "my file.pdf",
			expected: "uploads/123e4567-e89b-12d3-a456-426614174000/my_file.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.GenerateKey(fileID, tt.filename)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestShardedGenerator(t *testing.T) {
	gen := NewShardedGenerator()
	fileID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	result := gen.GenerateKey(fileID, "beautiful-picture.jpg")
	expected := "uploads/12/3e4567e89b12d3a456426614174000_beautiful-picture.jpg"
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}

	// Without a filename the key is the remaining ID hex.
	result = gen.GenerateKey(fileID, "")
	expected = "uploads/12/3e4567e89b12d3a456426614174000"
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}

	// Deterministic for the same inputs.
	if gen.GenerateKey(fileID, "a.txt") != gen.GenerateKey(fileID, "a.txt") {
		t.Error("sharded generator should be deterministic")
	}
}

func TestShardedGeneratorCustomLength(t *testing.T) {
	gen := &ShardedGenerator{ShardLength: 4}
	fileID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	result := gen.GenerateKey(fileID, "")
	if !strings.HasPrefix(result, "uploads/123e/") {
		t.Errorf("expected 4-char shard directory, got %s", result)
	}

	// Out-of-range lengths fall back to the default.
	gen = &ShardedGenerator{ShardLength: -1}
	result = gen.GenerateKey(fileID, "")
	if !strings.HasPrefix(result, "uploads/12/") {
		t.Errorf("expected 2-char shard directory, got %s", result)
	}
}

func TestCustomFuncGenerator(t *testing.T) {
	gen := NewCustomFuncGenerator(func(fileID uuid.UUID, filename string) string {
		return "custom/" + fileID.String() + ".dat"
	})
	fileID := uuid.MustParse("987fcdeb-51a2-43d1-9f12-345678901234")

	result := gen.GenerateKey(fileID, "ignored.txt")
	expected := "custom/987fcdeb-51a2-43d1-9f12-345678901234.dat"
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"normal.txt", "normal.txt"},
		{"file with spaces.txt", "file_with_spaces.txt"},
		{"file/with/slashes.txt", "file_with_slashes.txt"},
		{"file:with:colons.txt", "file_with_colons.txt"},
		{"file*with?special<chars>.txt", "file_with_special_chars_.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestShardingDistribution(t *testing.T) {
	gen := NewShardedGenerator()

	shardCounts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		key := gen.GenerateKey(uuid.New(), "file.txt")

		parts := strings.Split(key, "/")
		if len(parts) >= 2 {
			shardCounts[parts[1]]++
		}
	}

	// Should have reasonable distribution (not all in one shard)
	if len(shardCounts) < 10 {
		t.Errorf("expected more diverse sharding, got only %d shards", len(shardCounts))
	}

	for shard, count := range shardCounts {
		if count > 200 { // 20% of 1000
			t.Errorf("shard %s has too many objects (%d), sharding may be poor", shard, count)
		}
	}
}
