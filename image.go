package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// pageEntry locates one page image, either a plain file or an archive entry.
type pageEntry struct {
	Path        string // file path, or archive:entry for archive members
	ArchivePath string // empty for plain files
	EntryPath   string // path inside the archive
}

func (p pageEntry) name() string {
	if p.ArchivePath != "" {
		return p.EntryPath
	}
	return filepath.Base(p.Path)
}

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".cbz", ".rar", ".cbr", ".7z":
		return true
	}
	return false
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	}
	return false
}

// imageDocument treats an ordered set of images as pages.
type imageDocument struct {
	path      string
	title     string
	pages     []pageEntry
	startPage int
}

func newImageDocument(path string, pages []pageEntry, sortMethod SortMethod) (*imageDocument, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}
	return &imageDocument{
		path:      path,
		title:     filepath.Base(path),
		pages:     sortMethod.Sort(pages),
		startPage: 1,
	}, nil
}

func (d *imageDocument) Path() string   { return d.path }
func (d *imageDocument) Title() string  { return d.title }
func (d *imageDocument) PageCount() int { return len(d.pages) }
func (d *imageDocument) StartPage() int { return d.startPage }
func (d *imageDocument) Close() error   { return nil }

func (d *imageDocument) PageName(index int) string {
	if index < 0 || index >= len(d.pages) {
		return ""
	}
	return d.pages[index].name()
}

func (d *imageDocument) RenderPage(index int, zoom float64) (image.Image, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	img, err := decodePage(d.pages[index])
	if err != nil {
		return nil, err
	}
	return scalePage(img, zoom), nil
}

func openImageDirectory(dir string, sortMethod SortMethod) (*imageDocument, error) {
	var pages []pageEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case isSupportedExt(path):
			pages = append(pages, pageEntry{Path: path})
		case isArchiveExt(path):
			entries, err := listArchive(path)
			if err != nil {
				log.Printf("Warning: Skipping problematic archive %s: %v", path, err)
				return nil
			}
			pages = append(pages, entries...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newImageDocument(dir, pages, sortMethod)
}

func openImageArchive(archivePath string, sortMethod SortMethod) (*imageDocument, error) {
	entries, err := listArchive(archivePath)
	if err != nil {
		return nil, err
	}
	return newImageDocument(archivePath, entries, sortMethod)
}

// openImageSiblings opens every image in the file's directory and starts at
// the file itself.
func openImageSiblings(filePath string, sortMethod SortMethod) (*imageDocument, error) {
	dir := filepath.Dir(filePath)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var pages []pageEntry
	for _, e := range dirEntries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		pages = append(pages, pageEntry{Path: filepath.Join(dir, e.Name())})
	}

	doc, err := newImageDocument(filePath, pages, sortMethod)
	if err != nil {
		return nil, err
	}
	for i, p := range doc.pages {
		if filepath.Clean(p.Path) == filepath.Clean(filePath) {
			doc.startPage = i + 1
			break
		}
	}
	return doc, nil
}

func decodePage(p pageEntry) (image.Image, error) {
	var r io.Reader
	if p.ArchivePath == "" {
		f, err := os.Open(p.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		data, err := readArchiveEntry(p.ArchivePath, p.EntryPath)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.Path, err)
	}
	return img, nil
}

// Archive access

func archiveKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".cbz":
		return "zip"
	case ".rar", ".cbr":
		return "rar"
	case ".7z":
		return "7z"
	}
	return ""
}

func listArchive(archivePath string) ([]pageEntry, error) {
	var names []string
	var err error

	switch archiveKind(archivePath) {
	case "zip":
		names, err = listZip(archivePath)
	case "rar":
		names, err = listRar(archivePath)
	case "7z":
		names, err = list7z(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
	}
	if err != nil {
		return nil, err
	}

	entries := make([]pageEntry, 0, len(names))
	for _, name := range names {
		if !isSupportedExt(name) {
			continue
		}
		entries = append(entries, pageEntry{
			Path:        archivePath + ":" + name,
			ArchivePath: archivePath,
			EntryPath:   name,
		})
	}
	return entries, nil
}

func readArchiveEntry(archivePath, entryPath string) ([]byte, error) {
	switch archiveKind(archivePath) {
	case "zip":
		return readZipEntry(archivePath, entryPath)
	case "rar":
		return readRarEntry(archivePath, entryPath)
	case "7z":
		return read7zEntry(archivePath, entryPath)
	}
	return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
}

func listZip(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func readZipEntry(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func list7z(archivePath string) ([]string, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func read7zEntry(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

// walkRar calls fn for each file header; fn returns true to stop.
func walkRar(archivePath string, fn func(*rardecode.FileHeader, io.Reader) (bool, error)) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return err
	}
	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if header.IsDir {
			continue
		}
		stop, err := fn(header, r)
		if err != nil || stop {
			return err
		}
	}
}

func listRar(archivePath string) ([]string, error) {
	var names []string
	err := walkRar(archivePath, func(h *rardecode.FileHeader, _ io.Reader) (bool, error) {
		names = append(names, h.Name)
		return false, nil
	})
	return names, err
}

func readRarEntry(archivePath, entryPath string) ([]byte, error) {
	var data []byte
	found := false
	err := walkRar(archivePath, func(h *rardecode.FileHeader, r io.Reader) (bool, error) {
		if h.Name != entryPath {
			return false, nil
		}
		found = true
		var err error
		data, err = io.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
	}
	return data, nil
}
