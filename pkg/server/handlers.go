package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/export/nodelink"
	"github.com/geneatree/geneatree/pkg/store"
	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/layout"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetProject handles GET /v1/project.
func (s *Server) handleGetProject(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.project)
}

// handleListPeople handles GET /v1/people.
func (s *Server) handleListPeople(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	people := s.project.People
	if people == nil {
		people = []*tree.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

// handleGetPerson handles GET /v1/people/{id}.
func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	person := s.project.Person(id)
	if person == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "person %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, person)
}

type addPersonRequest struct {
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender"`
	BirthDate   string `json:"birth_date"`
	DeathDate   string `json:"death_date"`
	Note        string `json:"note"`
	PhotoPath   string `json:"photo_path"`
}

// handleAddPerson handles POST /v1/people.
// A missing display name is derived from the full name.
func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req addPersonRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birth, err := tree.NormalizeDate(req.BirthDate)
	if err != nil {
		writeError(w, err)
		return
	}
	death, err := tree.NormalizeDate(req.DeathDate)
	if err != nil {
		writeError(w, err)
		return
	}

	name := req.DisplayName
	if name == "" {
		name = tree.ShortName(req.FullName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	person := tree.NewPerson(s.ids, name)
	person.FullName = tree.Optional(req.FullName)
	person.Gender = tree.Optional(req.Gender)
	person.BirthDate = tree.Optional(birth)
	person.DeathDate = tree.Optional(death)
	person.Note = tree.Optional(req.Note)
	person.PhotoPath = tree.Optional(req.PhotoPath)
	s.project.AddPerson(person)

	s.logger.Info("added person", "id", person.ID, "name", person.DisplayName)
	writeJSON(w, http.StatusCreated, person)
}

// handleDeletePerson handles DELETE /v1/people/{id}.
// Relationships that reference the person are removed with it.
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project.Person(id) == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "person %s not found", id))
		return
	}
	s.project.RemovePerson(id)
	s.logger.Info("removed person", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// updatePersonRequest holds the fields of PATCH /v1/people/{id}. Absent
// fields are left alone; an empty string clears an optional field.
type updatePersonRequest struct {
	DisplayName *string `json:"display_name"`
	FullName    *string `json:"full_name"`
	Gender      *string `json:"gender"`
	BirthDate   *string `json:"birth_date"`
	DeathDate   *string `json:"death_date"`
	Note        *string `json:"note"`
	PhotoPath   *string `json:"photo_path"`
}

// handleUpdatePerson handles PATCH /v1/people/{id}.
func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updatePersonRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	edit := tree.PersonEdit{
		DisplayName: req.DisplayName,
		FullName:    req.FullName,
		Gender:      req.Gender,
		BirthDate:   req.BirthDate,
		DeathDate:   req.DeathDate,
		Note:        req.Note,
		PhotoPath:   req.PhotoPath,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	person := s.project.Person(id)
	if person == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "person %s not found", id))
		return
	}
	if err := edit.Apply(person); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("updated person", "id", person.ID, "name", person.DisplayName)
	writeJSON(w, http.StatusOK, person)
}

type addRelationshipRequest struct {
	Type   string `json:"type"`
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
}

// handleAddRelationship handles POST /v1/relationships.
// The edge is rejected when it would make the project invalid.
func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	var req addRelationshipRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tree.ParseRelationType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range []string{req.FromID, req.ToID} {
		if s.project.Person(id) == nil {
			writeError(w, errors.New(errors.ErrCodeNotFound, "person %s not found", id))
			return
		}
	}

	rel := tree.NewRelationship(s.ids, t, req.FromID, req.ToID)
	if !s.project.AddRelationship(rel) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "%s relationship %s-%s already exists", t, req.FromID, req.ToID))
		return
	}
	if err := validate.AssertValid(s.project); err != nil {
		s.project.RemoveRelationship(rel.ID)
		writeError(w, err)
		return
	}

	s.logger.Info("added relationship", "id", rel.ID, "type", rel.Type)
	writeJSON(w, http.StatusCreated, rel)
}

// handleDeleteRelationship handles DELETE /v1/relationships/{id}.
func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project.Relationship(id) == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "relationship %s not found", id))
		return
	}
	s.project.RemoveRelationship(id)
	w.WriteHeader(http.StatusNoContent)
}

type validateResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

// handleValidate handles GET /v1/validate.
func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	problems := validate.Project(s.project)
	s.mu.RUnlock()

	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(problems) == 0, Problems: problems})
}

type layoutResponse struct {
	Levels map[string]int `json:"levels"`
}

// handleLayout handles POST /v1/layout. The project is validated first since
// layout has no defence against cycles.
func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validate.AssertValid(s.project); err != nil {
		writeError(w, err)
		return
	}
	levels := layout.AutoLayout(s.project, s.startX, s.startY)
	writeJSON(w, http.StatusOK, layoutResponse{Levels: levels})
}

// handleSave handles POST /v1/save.
func (s *Server) handleSave(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.store.Save(s.project, s.path)
	store.ResolvePhotoPaths(s.project, s.path)
	if err != nil {
		s.logger.Error("save failed", "path", s.path, "err", err)
		writeError(w, err)
		return
	}
	s.logger.Info("saved project", "path", s.path)
	writeJSON(w, http.StatusOK, map[string]string{"path": s.path})
}

func (s *Server) dot(r *http.Request) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nodelink.ToDOT(s.project, nodelink.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
}

// handleExportDOT handles GET /v1/export/dot.
func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(s.dot(r)))
}

// handleExportSVG handles GET /v1/export/svg.
func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.renderSVG(r.Context(), s.dot(r))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "can't render diagram"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// handleExportPDF handles GET /v1/export/pdf. The page follows the project
// settings.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	page := nodelink.PageFor(s.project.Settings)
	s.mu.RUnlock()

	pdf, hit, err := s.renderer.PDF(r.Context(), s.dot(r), page)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			err = errors.Wrap(errors.ErrCodeInternal, err, "can't render diagram")
		}
		writeError(w, err)
		return
	}
	s.logger.Debug("rendered pdf", "cached_svg", hit, "bytes", len(pdf))
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(pdf)
}

func (s *Server) renderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, hit, err := s.renderer.SVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("rendered svg", "cached", hit, "bytes", len(svg))
	return svg, nil
}
