package convert

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"stg-renderer/internal/utils"
)

// LoadTextureFile decodes the texture container at path.
func LoadTextureFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, h, err := DecodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	utils.Debug("Texture: %s %v %dx%d", path, h.Format, h.ImageWidth, h.ImageHeight)
	return img, nil
}

// ConvertDir decodes every .tex file below root and saves it as PNG in
// outDir, or next to the source when outDir is empty. At most workers
// files are decoded at once. progress, when set, is called after each file.
// It returns the number converted and every failure joined.
func ConvertDir(root, outDir string, workers int, progress func()) (int, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".tex") {
			paths = append(paths, path)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return 0, err
		}
	}
	utils.Info("Convert: %d textures under %s", len(paths), root)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		converted int
		errs      []error
	)
	sem := make(chan struct{}, max(workers, 1))
	for _, p := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()
			err := convertOne(p, outDir)

			mu.Lock()
			if err != nil {
				errs = append(errs, err)
			} else {
				converted++
			}
			if progress != nil {
				progress()
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return converted, errors.Join(errs...)
}

// PNGPath is where ConvertDir writes the PNG for the texture at path.
func PNGPath(path, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".tex") + ".png"
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), name)
	}
	return filepath.Join(outDir, name)
}

func convertOne(path, outDir string) error {
	img, err := LoadTextureFile(path)
	if err != nil {
		return err
	}
	out := PNGPath(path, outDir)
	if err := imaging.Save(img, out); err != nil {
		os.Remove(out)
		return fmt.Errorf("save %s: %w", out, err)
	}
	return nil
}
