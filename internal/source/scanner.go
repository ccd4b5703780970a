package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theirongolddev/ipcsim/internal/model"
)

// ScanDir walks dir and discovers every .json data file, sorted by path.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // raced with a delete
		}
		files = append(files, DiscoveredFile{
			Path: path,
			Name: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Size: fi.Size(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// LoadResult holds the merged output of loading a file or a directory.
type LoadResult struct {
	Observations []model.Observation
	TotalFiles   int
	ParsedFiles  int
	Periods      int
	ParseErrors  int
}

// Load parses path, which may be a single data file or a directory of them.
// Files that fail to parse inside a directory are skipped and counted; a
// single file that fails is an error.
func Load(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening data: %w", err)
	}

	if !info.IsDir() {
		pr := ParseFile(path)
		if pr.Err != nil {
			return nil, pr.Err
		}
		return &LoadResult{
			Observations: pr.Observations,
			TotalFiles:   1,
			ParsedFiles:  1,
			Periods:      pr.Periods,
			ParseErrors:  pr.ParseErrors,
		}, nil
	}

	files, err := ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	res := &LoadResult{TotalFiles: len(files)}
	for _, f := range files {
		pr := ParseFile(f.Path)
		if pr.Err != nil {
			res.ParseErrors++
			continue
		}
		res.ParsedFiles++
		res.Periods += pr.Periods
		res.ParseErrors += pr.ParseErrors
		res.Observations = append(res.Observations, pr.Observations...)
	}
	return res, nil
}
