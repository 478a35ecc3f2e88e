package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/approval"
)

// ApprovalResponse is the API response for one classpath approval record
type ApprovalResponse struct {
	Hash       string  `json:"hash"`
	URL        string  `json:"url"`
	State      string  `json:"state"`
	CreatedAt  string  `json:"created_at"`
	ApprovedAt *string `json:"approved_at,omitempty"`
}

// StatusResponse is the API response for overall status
type StatusResponse struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
}

func recordToResponse(r approval.Record) ApprovalResponse {
	resp := ApprovalResponse{
		Hash:      r.Hash,
		URL:       r.URL,
		State:     string(r.State),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		t := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &t
	}
	return resp
}

func recordsToResponse(records []approval.Record) []ApprovalResponse {
	resp := make([]ApprovalResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, recordToResponse(r))
	}
	return resp
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := s.registry.ListPending()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		approved, err := s.registry.ListApproved()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, StatusResponse{Pending: len(pending), Approved: len(approved)})
	}
}

// listApprovalsHandler lists pending and approved records. ?state= filters.
func (s *Server) listApprovalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var records []approval.Record
		state := r.URL.Query().Get("state")

		if state == "" || state == string(approval.StatePending) {
			pending, err := s.registry.ListPending()
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			records = append(records, pending...)
		}
		if state == "" || state == string(approval.StateApproved) {
			approved, err := s.registry.ListApproved()
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			records = append(records, approved...)
		}
		if state != "" && state != string(approval.StatePending) && state != string(approval.StateApproved) {
			writeError(w, http.StatusBadRequest, "unknown state: "+state)
			return
		}

		writeJSON(w, recordsToResponse(records))
	}
}

func (s *Server) listPendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := s.registry.ListPending()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, recordsToResponse(pending))
	}
}

func (s *Server) approveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("hash")
		if err := s.registry.Approve(hash); err != nil {
			s.writeRegistryError(w, hash, err)
			return
		}
		if s.Debug {
			log.Printf("[api] approved %s", hash)
		}
		s.Broadcast(SSEEvent{Type: "approval.approved", Data: map[string]string{"hash": hash}})
		writeJSON(w, map[string]string{"hash": hash, "state": string(approval.StateApproved)})
	}
}

func (s *Server) denyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("hash")
		if err := s.registry.Deny(hash); err != nil {
			s.writeRegistryError(w, hash, err)
			return
		}
		if s.Debug {
			log.Printf("[api] denied %s", hash)
		}
		s.Broadcast(SSEEvent{Type: "approval.denied", Data: map[string]string{"hash": hash}})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeRegistryError(w http.ResponseWriter, hash string, err error) {
	if errors.Is(err, approval.ErrNotPending) {
		writeError(w, http.StatusNotFound, "no pending approval for "+hash)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
