// Package store reads and writes family-tree projects on disk.
//
// # Layout
//
// A project is a JSON document at some path P plus an assets directory next
// to it:
//
//	family.json
//	assets/
//	    3f2a...e1.jpg
//	    9bc0...44.png
//
// [Store.Save] copies every reachable photo into assets/<person-id><ext>,
// rewrites the person's photo_path to that project-relative path and rebuilds
// the assets manifest. A photo whose source file does not exist is left
// alone: the person keeps the original path string and no error is raised.
//
// # Errors
//
// Save refuses an invalid project with the validator's error and writes
// nothing. Every I/O, JSON, decoding or validation failure on the read path
// is reported as a single STORAGE_ERROR that wraps the cause:
//
//	p, err := store.Load("family.json")
//	if errors.Is(err, errors.ErrCodeStorage) {
//	    fmt.Println(errors.UserMessage(err))
//	}
//
// Load keeps photo paths relative; call [ResolvePhotoPaths] afterwards to
// turn them into absolute paths for display.
package store

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/observability"
	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

// AssetsDir is the name of the photo directory created next to the project
// file.
const AssetsDir = "assets"

// Store saves and loads projects. The zero value is not usable; use [New].
type Store struct {
	// Logger receives debug lines about asset handling.
	Logger *log.Logger
	// IDs fills in ids missing from loaded documents.
	IDs tree.IDGenerator
}

// New creates a store. A nil logger discards output; a nil generator uses
// [tree.NewID].
func New(logger *log.Logger, ids tree.IDGenerator) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if ids == nil {
		ids = tree.NewID
	}
	return &Store{Logger: logger, IDs: ids}
}

var defaultStore = New(nil, nil)

// Save writes p to path using a store without logging.
func Save(p *tree.TreeProject, path string) error { return defaultStore.Save(p, path) }

// Load reads the project at path using a store without logging.
func Load(path string) (*tree.TreeProject, error) { return defaultStore.Load(path) }

// Save validates p, relocates its photos into the assets directory and
// writes it to path. Photo paths and the assets manifest of p are updated in
// place.
//
// The document is written to a temporary file and renamed over path, so a
// failed write never leaves a truncated project behind. Asset copies happen
// before the write and are not rolled back.
func (s *Store) Save(p *tree.TreeProject, path string) error {
	start := time.Now()
	assets, err := s.save(p, path)
	observability.Store().OnSave(path, len(p.People), assets, time.Since(start), err)
	return err
}

func (s *Store) save(p *tree.TreeProject, path string) (int, error) {
	if err := validate.AssertValid(p); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	assets := filepath.Join(dir, AssetsDir)
	if err := os.MkdirAll(assets, 0755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "can't create assets directory: %s", assets)
	}

	manifest := make(map[string]string)
	for _, person := range p.People {
		rel, ok := s.storePhoto(person, dir)
		if !ok {
			continue
		}
		person.PhotoPath = &rel
		manifest[person.ID] = rel
	}
	p.AssetsManifest = manifest

	data, err := encode(p)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "can't encode project")
	}
	if err := writeFileAtomic(path, data); err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "can't save project file: %s", path)
	}
	s.Logger.Debug("saved project", "path", path, "people", len(p.People), "assets", len(manifest))
	return len(manifest), nil
}

// storePhoto copies the photo of person into the assets directory under dir
// and returns its project-relative, slash-separated path. It reports false
// when the person has no photo, the source is missing, or the copy fails.
func (s *Store) storePhoto(person *tree.Person, dir string) (string, bool) {
	photo := tree.Value(person.PhotoPath)
	if photo == "" {
		return "", false
	}

	src := photo
	if !filepath.IsAbs(src) {
		src = filepath.Join(dir, src)
	}
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		s.Logger.Debug("photo not found, keeping path", "person", person.ID, "photo", photo)
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}
	name := person.ID + ext
	dst := filepath.Join(dir, AssetsDir, name)

	if !sameFile(info, dst) {
		if err := copyFile(src, dst, info); err != nil {
			s.Logger.Warn("can't copy photo", "person", person.ID, "src", src, "err", err)
			return "", false
		}
		s.Logger.Debug("copied photo", "person", person.ID, "dst", dst)
	}
	return AssetsDir + "/" + name, true
}

func sameFile(src os.FileInfo, dst string) bool {
	info, err := os.Stat(dst)
	return err == nil && os.SameFile(src, info)
}

// copyFile copies src to dst, keeping the source modification time.
func copyFile(src, dst string, info os.FileInfo) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// encode renders p as indented JSON with non-ASCII text and HTML characters
// written as-is.
func encode(p *tree.TreeProject) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads, decodes and validates the project at path.
func (s *Store) Load(path string) (*tree.TreeProject, error) {
	start := time.Now()
	p, err := s.load(path)
	people := 0
	if p != nil {
		people = len(p.People)
	}
	observability.Store().OnLoad(path, people, time.Since(start), err)
	return p, err
}

func (s *Store) load(path string) (*tree.TreeProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "can't read project file: %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "project file is not valid JSON: %s", path)
	}

	p, err := s.decode(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "project data is invalid")
	}
	s.Logger.Debug("loaded project", "path", path, "people", len(p.People), "relationships", len(p.Relationships))
	return p, nil
}

func (s *Store) decode(raw any) (*tree.TreeProject, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeDecode, "project must be an object, got %T", raw)
	}
	p, err := tree.Decode(m, s.IDs)
	if err != nil {
		return nil, err
	}
	if err := validate.AssertValid(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ResolvePhotoPaths rewrites relative photo paths of p to absolute paths
// against the directory of the project file at path. Paths that are already
// absolute, or whose file does not exist, are left unchanged.
func ResolvePhotoPaths(p *tree.TreeProject, path string) {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return
	}
	for _, person := range p.People {
		photo := tree.Value(person.PhotoPath)
		if photo == "" || filepath.IsAbs(photo) {
			continue
		}
		abs := filepath.Join(dir, filepath.FromSlash(photo))
		if _, err := os.Stat(abs); err == nil {
			person.PhotoPath = &abs
		}
	}
}
