package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a local file selected for upload.
type File struct {
	// Path is the absolute path on disk.
	Path string

	// Name is the path relative to the selected folder, or the base name
	// for individually selected files.
	Name string

	// Size in bytes.
	Size int64
}

// Options filter what Collect selects.
type Options struct {
	// Extensions restricts collection to these extensions (".pdf").
	// Empty accepts every file.
	Extensions []string

	// IncludeHidden keeps dot files and dot folders.
	IncludeHidden bool
}

// Collect expands paths into a sorted, de-duplicated list of regular files.
// Folders are walked recursively.
func Collect(paths []string, opts Options) ([]File, error) {
	seen := make(map[string]struct{})
	var files []File

	add := func(abs, name string, size int64) {
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, File{Path: abs, Name: name, Size: size})
	}

	for _, p := range paths {
		root, err := ResolvePath(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				return nil, fmt.Errorf("%s is not a regular file", p)
			}
			add(root, filepath.Base(root), info.Size())
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if !opts.IncludeHidden && rel != "." && isHidden(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() || !opts.accepts(path) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			add(path, filepath.ToSlash(rel), fi.Size())
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// TotalSize sums the sizes of files.
func TotalSize(files []File) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

func (o Options) accepts(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range o.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}
