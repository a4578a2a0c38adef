// Package filekey provides object key generation strategies for uploaded
// media files.
package filekey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for storage backends
	GenerateKey(fileID uuid.UUID, filename string) string
}

// FlatGenerator produces one directory per file:
// uploads/{fileID}/{filename}
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(fileID uuid.UUID, filename string) string {
	if filename != "" {
		return fmt.Sprintf("uploads/%s/%s", fileID, SanitizeFilename(filename))
	}
	return fmt.Sprintf("uploads/%s", fileID)
}

// ShardedGenerator produces Git-style sharded keys to keep directories small:
// uploads/ab/cd1234ef5678_filename
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(fileID uuid.UUID, filename string) string {
	// The file ID is unique and random, so it shards evenly.
	idStr := strings.ReplaceAll(fileID.String(), "-", "")

	shardLength := g.ShardLength
	if shardLength <= 0 || shardLength > len(idStr) {
		shardLength = 2
	}

	shardDir := idStr[:shardLength]
	remaining := idStr[shardLength:]

	name := remaining
	if filename != "" {
		name = fmt.Sprintf("%s_%s", remaining, SanitizeFilename(filename))
	}

	return fmt.Sprintf("uploads/%s/%s", shardDir, name)
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(fileID uuid.UUID, filename string) string
}

func NewCustomFuncGenerator(fn func(fileID uuid.UUID, filename string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(fileID uuid.UUID, filename string) string {
	return g.GenerateFunc(fileID, filename)
}

// SanitizeFilename replaces characters that are problematic in object keys
// and filesystem paths.
func SanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

// NewRecommendedGenerator returns the generator used when none is configured
func NewRecommendedGenerator() Generator {
	return NewShardedGenerator()
}
