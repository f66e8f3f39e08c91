package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appNegotiation "github.com/dataspace-hub/dataspace-hub/internal/application/negotiation"
	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// Server holds dependencies for HTTP handlers. The management API is
// consumed by this connector's operator; the protocol API receives
// messages from counter party connectors and requires a verified token.
type Server struct {
	negotiationSvc *appNegotiation.Service
	verifier       TokenVerifier
	logger         zerolog.Logger
}

func NewServer(negotiationSvc *appNegotiation.Service, verifier TokenVerifier, logger zerolog.Logger) *Server {
	return &Server{
		negotiationSvc: negotiationSvc,
		verifier:       verifier,
		logger:         logger.With().Str("service", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/negotiations", func(r chi.Router) {
			r.Post("/", s.initiateNegotiation)
			r.Get("/", s.queryNegotiations)
			r.Get("/{negotiationId}", s.getNegotiation)
			r.Get("/{negotiationId}/state", s.getNegotiationState)
			r.Get("/{negotiationId}/agreement", s.getNegotiationAgreement)
			r.Post("/{negotiationId}/cancel", s.cancelNegotiation)
			r.Post("/{negotiationId}/decline", s.declineNegotiation)
		})
		r.Get("/agreements/{agreementId}", s.getAgreement)

		r.Route("/protocol/negotiations", func(r chi.Router) {
			r.Use(s.requireProtocolToken)
			r.Post("/request", s.protocolRequest)
			r.Post("/agreement", s.protocolAgreement)
			r.Post("/verification", s.protocolVerification)
			r.Post("/event", s.protocolEvent)
			r.Post("/termination", s.protocolTermination)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps a service error to its HTTP status via the
// error's reason code.
func respondServiceError(w http.ResponseWriter, err error) {
	reason := domainNegotiation.ReasonOf(err)
	status := http.StatusInternalServerError
	switch reason {
	case domainNegotiation.ReasonNotFound:
		status = http.StatusNotFound
	case domainNegotiation.ReasonConflict:
		status = http.StatusConflict
	case domainNegotiation.ReasonBadRequest:
		status = http.StatusBadRequest
	}
	respondError(w, status, string(reason), err.Error())
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseQuerySpec(r *http.Request) (domainNegotiation.QuerySpec, error) {
	spec := domainNegotiation.QuerySpec{
		SortField: r.URL.Query().Get("sortField"),
	}
	if order := r.URL.Query().Get("sortOrder"); order != "" {
		spec.SortOrder = domainNegotiation.SortOrder(order)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			spec.Limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			spec.Offset = o
		}
	}
	for _, expr := range r.URL.Query()["filter"] {
		criterion, err := domainNegotiation.ParseFilterExpression(expr)
		if err != nil {
			return spec, err
		}
		spec.Filter = append(spec.Filter, criterion)
	}
	return spec, nil
}
