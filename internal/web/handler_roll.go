package web

import (
	"net/http"

	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/service"
)

func (s *Server) handleListRolls(w http.ResponseWriter, r *http.Request) {
	q, err := rollQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.rolls.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, page)
}

func rollQuery(r *http.Request) (service.RollQuery, error) {
	params := r.URL.Query()
	q := service.RollQuery{
		OrderID: params.Get("order_id"),
		Search:  params.Get("search"),
	}
	if raw := params.Get("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return q, domain.Invalid("status", err.Error())
		}
		q.Status = &st
	}
	var err error
	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) handleCreateRoll(w http.ResponseWriter, r *http.Request) {
	var draft domain.RollDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}
	roll, err := s.rolls.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, roll)
}

func (s *Server) handleGetRoll(w http.ResponseWriter, r *http.Request) {
	roll, err := s.rolls.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}

func (s *Server) handleUpdateRoll(w http.ResponseWriter, r *http.Request) {
	var patch domain.RollPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	roll, err := s.rolls.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}

func (s *Server) handleDeleteRoll(w http.ResponseWriter, r *http.Request) {
	if err := s.rolls.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loadRequest struct {
	DateLoaded *domain.Date `json:"date_loaded"`
}

func (s *Server) handleLoadRoll(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DateLoaded == nil {
		s.writeError(w, r, domain.Invalid("date_loaded", "required"))
		return
	}
	roll, err := s.rolls.Load(r.Context(), r.PathValue("id"), *req.DateLoaded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}

type unloadRequest struct {
	DateUnloaded *domain.Date `json:"date_unloaded"`
}

func (s *Server) handleUnloadRoll(w http.ResponseWriter, r *http.Request) {
	var req unloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DateUnloaded == nil {
		s.writeError(w, r, domain.Invalid("date_unloaded", "required"))
		return
	}
	roll, err := s.rolls.Unload(r.Context(), r.PathValue("id"), *req.DateUnloaded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}

type chemistryRequest struct {
	ChemistryID string `json:"chemistry_id"`
}

func (s *Server) handleAssignChemistry(w http.ResponseWriter, r *http.Request) {
	var req chemistryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	roll, err := s.rolls.AssignChemistry(r.Context(), r.PathValue("id"), req.ChemistryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}

type ratingRequest struct {
	Stars           *int `json:"stars"`
	ActualExposures *int `json:"actual_exposures"`
}

func (s *Server) handleRateRoll(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Stars == nil {
		s.writeError(w, r, domain.Invalid("stars", "required"))
		return
	}
	roll, err := s.rolls.Rate(r.Context(), r.PathValue("id"), *req.Stars, req.ActualExposures)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, roll)
}
