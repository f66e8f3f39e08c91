package httpapi

import (
	"context"
	"net/http"
	"strings"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// TokenVerifier validates the bearer token of an inbound protocol
// message and returns its claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domainNegotiation.ClaimToken, error)
}

type claimTokenKey struct{}

// requireProtocolToken rejects protocol messages without a valid bearer
// token and stores the verified claims on the request context.
func (s *Server) requireProtocolToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims, err := s.verifier.VerifyToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimTokenKey{}, claims)))
	})
}

func claimTokenFromContext(ctx context.Context) *domainNegotiation.ClaimToken {
	token, _ := ctx.Value(claimTokenKey{}).(*domainNegotiation.ClaimToken)
	return token
}

func (s *Server) protocolRequest(w http.ResponseWriter, r *http.Request) {
	var msg domainNegotiation.ContractOfferRequest
	if err := decodeBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.NotifyConsumerRequested(r.Context(), &msg, claimTokenFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"processId": n.ID, "state": n.State.Name()})
}

func (s *Server) protocolAgreement(w http.ResponseWriter, r *http.Request) {
	var msg domainNegotiation.ContractAgreementRequest
	if err := decodeBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.NotifyProviderAgreed(r.Context(), &msg, claimTokenFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"processId": n.ID, "state": n.State.Name()})
}

func (s *Server) protocolVerification(w http.ResponseWriter, r *http.Request) {
	var msg domainNegotiation.ContractAgreementVerification
	if err := decodeBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.NotifyConsumerVerified(r.Context(), &msg, claimTokenFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"processId": n.ID, "state": n.State.Name()})
}

func (s *Server) protocolEvent(w http.ResponseWriter, r *http.Request) {
	var msg domainNegotiation.ContractNegotiationEvent
	if err := decodeBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.NotifyProviderFinalized(r.Context(), &msg, claimTokenFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"processId": n.ID, "state": n.State.Name()})
}

func (s *Server) protocolTermination(w http.ResponseWriter, r *http.Request) {
	var msg domainNegotiation.TerminationMessage
	if err := decodeBody(r, &msg); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	n, err := s.negotiationSvc.NotifyTerminated(r.Context(), &msg, claimTokenFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"processId": n.ID, "state": n.State.Name()})
}
