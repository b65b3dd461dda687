package store

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/observability"
	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

func sample() *tree.TreeProject {
	ids := tree.SequentialIDs("p")
	p := tree.New()
	a := tree.NewPerson(ids, "Анна")
	b := tree.NewPerson(ids, "Boris & Co")
	p.AddPerson(a)
	p.AddPerson(b)
	p.AddRelationship(tree.NewRelationship(ids, tree.RelSpouse, a.ID, b.ID))
	return p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")
	p := sample()
	p.People[0].Style = tree.Metadata{"color": "#ccddee"}

	if err := Save(p, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, AssetsDir)); err != nil {
		t.Errorf("assets directory not created: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got.People) != 2 || len(got.Relationships) != 1 {
		t.Fatalf("Load() = %d people, %d relationships", len(got.People), len(got.Relationships))
	}
	if got.People[0].DisplayName != "Анна" {
		t.Errorf("DisplayName = %q", got.People[0].DisplayName)
	}
	if got.People[0].Style["color"] != "#ccddee" {
		t.Errorf("Style = %v", got.People[0].Style)
	}
	if got.Settings != p.Settings {
		t.Errorf("Settings = %+v, want %+v", got.Settings, p.Settings)
	}
}

func TestSaveWritesReadableJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	if err := Save(sample(), path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Анна", "Boris & Co", "\n  \"project_version\": 1"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("project file missing %q:\n%s", want, data)
		}
	}
	if !json.Valid(data) {
		t.Error("project file is not valid JSON")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestSaveRelocatesPhoto(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(t.TempDir(), "Portrait.PNG")
	writeFile(t, photo, "png-bytes")

	p := sample()
	person := p.People[0]
	person.PhotoPath = tree.Optional(photo)
	path := filepath.Join(dir, "family.json")

	if err := Save(p, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	want := "assets/" + person.ID + ".png"
	if got := tree.Value(person.PhotoPath); got != want {
		t.Errorf("PhotoPath = %q, want %q", got, want)
	}
	if got := p.AssetsManifest[person.ID]; got != want {
		t.Errorf("AssetsManifest[%s] = %q, want %q", person.ID, got, want)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(want)))
	if err != nil {
		t.Fatalf("asset not copied: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("asset content = %q", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := tree.Value(loaded.People[0].PhotoPath); got != want {
		t.Errorf("loaded PhotoPath = %q, want %q", got, want)
	}
	if got := loaded.AssetsManifest[person.ID]; got != want {
		t.Errorf("loaded manifest = %v", loaded.AssetsManifest)
	}

	// Saving again finds the asset in place and keeps it.
	if err := Save(loaded, path); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	if got := loaded.AssetsManifest[person.ID]; got != want {
		t.Errorf("manifest after second save = %v", loaded.AssetsManifest)
	}
}

func TestSavePhotoWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photos", "scan"), "jpeg")

	p := sample()
	p.People[1].PhotoPath = tree.Optional("photos/scan")
	if err := Save(p, filepath.Join(dir, "family.json")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	want := "assets/" + p.People[1].ID + ".jpg"
	if got := tree.Value(p.People[1].PhotoPath); got != want {
		t.Errorf("PhotoPath = %q, want %q", got, want)
	}
}

func TestSaveKeepsMissingPhoto(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nowhere", "photo.jpg")

	var logs bytes.Buffer
	s := New(log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}), nil)

	p := sample()
	p.People[0].PhotoPath = tree.Optional(missing)
	path := filepath.Join(dir, "family.json")
	if err := s.Save(p, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got := tree.Value(p.People[0].PhotoPath); got != missing {
		t.Errorf("PhotoPath = %q, want unchanged %q", got, missing)
	}
	if len(p.AssetsManifest) != 0 {
		t.Errorf("AssetsManifest = %v, want empty", p.AssetsManifest)
	}
	if !strings.Contains(logs.String(), "photo not found") {
		t.Errorf("expected debug log about missing photo, got %q", logs.String())
	}

	loaded, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := tree.Value(loaded.People[0].PhotoPath); got != missing {
		t.Errorf("loaded PhotoPath = %q, want %q", got, missing)
	}
}

func TestSaveRejectsInvalidProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")
	p := sample()
	p.AddPerson(&tree.Person{ID: p.People[0].ID, DisplayName: "dup"})

	err := Save(p, path)
	if err == nil {
		t.Fatal("Save() succeeded, want error")
	}
	var verr *validate.ValidationError
	if !stderrors.As(err, &verr) {
		t.Errorf("Save() error = %T, want *validate.ValidationError", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("project file written despite validation failure")
	}
	if _, err := os.Stat(filepath.Join(dir, AssetsDir)); !os.IsNotExist(err) {
		t.Errorf("assets directory created despite validation failure")
	}
}

func TestSaveUnwritableTarget(t *testing.T) {
	dir := t.TempDir()
	// A directory where the project file should go makes the rename fail.
	path := filepath.Join(dir, "family.json")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(path, "keep"), "x")

	err := Save(sample(), path)
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("Save() error = %v, want STORAGE_ERROR", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{not json")
	invalid := filepath.Join(dir, "invalid.json")
	writeFile(t, invalid, `{"people":[{"id":"a","display_name":"A"}],"relationships":[{"id":"r","type":"parent","from_id":"a","to_id":"a"}]}`)
	badType := filepath.Join(dir, "badtype.json")
	writeFile(t, badType, `{"people":[],"relationships":[{"id":"r","type":"cousin","from_id":"a","to_id":"b"}]}`)
	list := filepath.Join(dir, "list.json")
	writeFile(t, list, `[]`)

	tests := []struct {
		name    string
		path    string
		message string
		cause   errors.Code
	}{
		{"missing file", filepath.Join(dir, "none.json"), "can't read project file", ""},
		{"malformed json", bad, "project file is not valid JSON", ""},
		{"invalid data", invalid, "project data is invalid", errors.ErrCodeValidation},
		{"unknown type", badType, "project data is invalid", errors.ErrCodeDecode},
		{"not an object", list, "project data is invalid", errors.ErrCodeDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if got := errors.GetCode(err); got != errors.ErrCodeStorage {
				t.Errorf("GetCode() = %s, want STORAGE_ERROR", got)
			}
			if !strings.Contains(errors.UserMessage(err), tt.message) {
				t.Errorf("UserMessage() = %q, want it to contain %q", errors.UserMessage(err), tt.message)
			}
			if tt.cause != "" && !errors.Is(err, tt.cause) {
				t.Errorf("error chain lacks %s: %v", tt.cause, err)
			}
		})
	}
}

func TestLoadFillsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	writeFile(t, path, `{"people":[{"display_name":"A"},{"id":"","display_name":"B"}]}`)

	s := New(nil, tree.SequentialIDs("gen"))
	p, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.People[0].ID != "gen-1" || p.People[1].ID != "gen-2" {
		t.Errorf("ids = %q, %q", p.People[0].ID, p.People[1].ID)
	}
}

func TestResolvePhotoPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "assets", "a.jpg"), "x")
	path := filepath.Join(dir, "family.json")

	abs := filepath.Join(t.TempDir(), "elsewhere.jpg")
	p := tree.New()
	p.AddPerson(&tree.Person{ID: "a", DisplayName: "A", PhotoPath: tree.Optional("assets/a.jpg")})
	p.AddPerson(&tree.Person{ID: "b", DisplayName: "B", PhotoPath: tree.Optional("assets/missing.jpg")})
	p.AddPerson(&tree.Person{ID: "c", DisplayName: "C", PhotoPath: tree.Optional(abs)})
	p.AddPerson(&tree.Person{ID: "d", DisplayName: "D"})

	ResolvePhotoPaths(p, path)

	want := map[string]string{
		"a": filepath.Join(dir, "assets", "a.jpg"),
		"b": "assets/missing.jpg",
		"c": abs,
		"d": "",
	}
	for id, w := range want {
		if got := tree.Value(p.Person(id).PhotoPath); got != w {
			t.Errorf("PhotoPath[%s] = %q, want %q", id, got, w)
		}
	}
}

type recordingHooks struct {
	loads, saves []string
	errs         []error
	assets       int
}

func (h *recordingHooks) OnLoad(path string, people int, _ time.Duration, err error) {
	h.loads = append(h.loads, path)
	h.errs = append(h.errs, err)
}

func (h *recordingHooks) OnSave(path string, people, assets int, _ time.Duration, err error) {
	h.saves = append(h.saves, path)
	h.assets = assets
	h.errs = append(h.errs, err)
}

func TestStoreHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")
	writeFile(t, filepath.Join(dir, "face.png"), "png")
	p := sample()
	p.People[0].PhotoPath = tree.Optional("face.png")

	if err := Save(p, path); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	_, missingErr := Load(filepath.Join(dir, "missing.json"))

	if len(hooks.saves) != 1 || hooks.assets != 1 {
		t.Errorf("saves = %v, assets = %d, want one save with 1 asset", hooks.saves, hooks.assets)
	}
	if len(hooks.loads) != 2 {
		t.Fatalf("loads = %v, want 2", hooks.loads)
	}
	if last := hooks.errs[len(hooks.errs)-1]; last != missingErr || last == nil {
		t.Errorf("last hook error = %v, want %v", last, missingErr)
	}
}
