package documents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrDataDirMissing = errors.New("data directory not found")

type FileInfo struct {
	Path string
	Name string
	Kind Kind
}

// discoverFiles lists the top level of dir and keeps .pdf, .txt and .md files.
func discoverFiles(dir string) ([]FileInfo, error) {
	names, err := listDir(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, name := range names {
		kind, ok := classify(name)
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{Path: path, Name: name, Kind: kind})
	}

	return files, nil
}

// listDir returns every entry name in dir, sorted.
func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataDirMissing, dir)
		}
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

func classify(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, true
	case ".txt", ".md":
		return KindText, true
	default:
		return "", false
	}
}
