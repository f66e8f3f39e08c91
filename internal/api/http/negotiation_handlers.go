package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

type declineRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (s *Server) initiateNegotiation(w http.ResponseWriter, r *http.Request) {
	var req domainNegotiation.ContractOfferRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.InitiateNegotiation(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, n)
}

func (s *Server) queryNegotiations(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuerySpec(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	negotiations, err := s.negotiationSvc.Query(r.Context(), spec)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if negotiations == nil {
		negotiations = []*domainNegotiation.ContractNegotiation{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"negotiations": negotiations})
}

func (s *Server) getNegotiation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "negotiationId")
	n, err := s.negotiationSvc.FindByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if n == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "negotiation not found")
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) getNegotiationState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "negotiationId")
	state, err := s.negotiationSvc.GetState(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if state == "" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "negotiation not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"state": state})
}

func (s *Server) getNegotiationAgreement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "negotiationId")
	agreement, err := s.negotiationSvc.GetForNegotiation(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if agreement == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no agreement for negotiation")
		return
	}
	respondJSON(w, http.StatusOK, agreement)
}

func (s *Server) cancelNegotiation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "negotiationId")
	n, err := s.negotiationSvc.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) declineNegotiation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "negotiationId")
	var req declineRequest
	_ = decodeBody(r, &req)
	n, err := s.negotiationSvc.Decline(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) getAgreement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agreementId")
	agreement, err := s.negotiationSvc.GetAgreementByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if agreement == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "agreement not found")
		return
	}
	respondJSON(w, http.StatusOK, agreement)
}
