package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetDirs are the directories ResolveAsset searches, in order.
var AssetDirs = []string{"assets"}

// ErrAssetNotFound is returned when no search directory holds an asset.
var ErrAssetNotFound = errors.New("asset not found")

var errFound = errors.New("found")

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// ResolveAsset finds name in AssetDirs. An absolute or directly existing
// path wins. Without an extension, each of exts is tried in turn. As a last
// resort every search directory is walked for a file with the same base
// name.
func ResolveAsset(name string, exts ...string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrAssetNotFound)
	}
	if exists(name) {
		return name, nil
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}

	clean := filepath.Clean(name)
	candidates := []string{clean}
	if filepath.Ext(clean) == "" {
		for _, ext := range exts {
			candidates = append(candidates, clean+ext)
		}
	}

	for _, dir := range AssetDirs {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if exists(p) {
				return p, nil
			}
		}
	}

	// Deep search
	base := filepath.Base(clean)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, dir := range AssetDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		var found string
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			n := d.Name()
			if n == base || (filepath.Ext(clean) == "" && strings.TrimSuffix(n, filepath.Ext(n)) == stem && hasExt(n, exts)) {
				found = path
				return errFound
			}
			return nil
		})
		if found != "" {
			Debug("Assets: %s found by deep search at %s", name, found)
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrAssetNotFound, name, strings.Join(AssetDirs, ", "))
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadAsset resolves name and reads the file.
func ReadAsset(name string, exts ...string) ([]byte, string, error) {
	p, err := ResolveAsset(name, exts...)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, p, fmt.Errorf("read %s: %w", p, err)
	}
	return data, p, nil
}
