package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/store"
)

func (s *Server) handleListChemistry(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := queryBool(r, "active_only")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f := store.ChemistryFilter{
		ActiveOnly:    activeOnly,
		ChemistryType: domain.ChemistryType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("chemistry_type")))),
	}
	list, err := s.chemistry.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, list)
}

func (s *Server) handleCreateChemistry(w http.ResponseWriter, r *http.Request) {
	var draft domain.ChemistryDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}
	batch, err := s.chemistry.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, batch)
}

func (s *Server) handleGetChemistry(w http.ResponseWriter, r *http.Request) {
	batch, err := s.chemistry.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, batch)
}

func (s *Server) handleUpdateChemistry(w http.ResponseWriter, r *http.Request) {
	var patch domain.ChemistryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	batch, err := s.chemistry.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, batch)
}

func (s *Server) handleDeleteChemistry(w http.ResponseWriter, r *http.Request) {
	if err := s.chemistry.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
