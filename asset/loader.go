// Package asset loads vehicle body and wheel models off the frame loop.
// Loads are keyed by a generation number; a result from an older generation
// than the current one is discarded when drained.
package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/scene"
)

var ErrAssetLoad = errors.New("asset load failed")

// Loader fetches one model
type Loader interface {
	Load(ctx context.Context, m catalog.Model) (*scene.Transform, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, m catalog.Model) (*scene.Transform, error)

func (f LoaderFunc) Load(ctx context.Context, m catalog.Model) (*scene.Transform, error) {
	return f(ctx, m)
}

// FileLoader resolves model paths under a root directory
// Every load reads the filesystem; reuse across vehicle swaps is left to the caller
type FileLoader struct {
	root string
}

func NewFileLoader(root string) *FileLoader {
	return &FileLoader{root: root}
}

func (l *FileLoader) Load(ctx context.Context, m catalog.Model) (*scene.Transform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := l.resolve(m.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetLoad, m.Path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrAssetLoad, m.Path)
	}

	node := scene.NewTransform(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), scene.ShapeModel)
	node.Source = path
	if m.Scale != (mgl64.Vec3{}) {
		node.Scale = m.Scale
	}
	return node, nil
}

func (l *FileLoader) resolve(p string) string {
	p = strings.TrimPrefix(filepath.FromSlash(p), string(filepath.Separator))
	if l.root == "" {
		return p
	}
	return filepath.Join(l.root, p)
}
