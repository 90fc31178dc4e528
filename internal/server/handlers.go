package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/export"
	"timesheet/internal/services"
	"timesheet/internal/validation"
)

// createEntryRequest is the body of POST .../time-entries
type createEntryRequest struct {
	ProjectID    *uuid.UUID `json:"project_id"`
	TaskID       *uuid.UUID `json:"task_id"`
	ClientID     *uuid.UUID `json:"client_id"`
	Description  string     `json:"description"`
	Start        time.Time  `json:"start"`
	End          *time.Time `json:"end"`
	Tags         []string   `json:"tags"`
	Billable     bool       `json:"billable"`
	BillableRate *int64     `json:"billable_rate"`
}

// stopEntryRequest is the optional body of POST .../time-entries/{id}/stop
type stopEntryRequest struct {
	End time.Time `json:"end"`
}

func (s *Server) actor(r *http.Request) (domain.Actor, error) {
	userID := r.Header.Get(UserHeader)
	if userID == "" {
		return domain.Actor{}, errors.NewPermissionError("access", "organization without "+UserHeader)
	}
	return s.api.ResolveActor(r.Context(), r.PathValue("org"), userID)
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	at, err := s.dateParam(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	info, err := s.api.CurrentPeriod(r.Context(), actor, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// handleOwnTimesheet lists the caller's entries in one period by day
func (s *Server) handleOwnTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	at, err := s.dateParam(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sheet, err := s.api.OwnTimesheet(r.Context(), actor, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pending, err := s.api.PendingTimesheets(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	board, err := s.api.ApprovalBoard(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	calc, err := s.api.Calendar(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	var from, to *time.Time
	if raw := q.Get("date_start"); raw != "" {
		t, err := calc.ParseStart("date_start", raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		from = &t
	}
	if raw := q.Get("date_end"); raw != "" {
		t, err := calc.ParseEnd("date_end", raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		to = &t
	}

	entries, err := s.api.ListOwnEntries(r.Context(), actor, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createEntryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	entry, err := s.api.CreateEntry(r.Context(), actor, services.NewTimeEntry{
		ProjectID:    req.ProjectID,
		TaskID:       req.TaskID,
		ClientID:     req.ClientID,
		Description:  req.Description,
		Start:        req.Start,
		End:          req.End,
		Tags:         req.Tags,
		Billable:     req.Billable,
		BillableRate: req.BillableRate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var payload validation.BatchPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.api.Transition(r.Context(), actor, r.PathValue("action"), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStopEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req stopEntryRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	entry, err := s.api.StopEntry(r.Context(), actor, r.PathValue("id"), req.End)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.api.DeleteEntry(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOverview defaults the range to the current period
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.api.CurrentPeriod(r.Context(), actor, time.Time{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	calc, err := s.api.Calendar(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, to := current.From, current.To

	q := r.URL.Query()
	if raw := q.Get("date_start"); raw != "" {
		if from, err = calc.ParseStart("date_start", raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if raw := q.Get("date_end"); raw != "" {
		if to, err = calc.ParseEnd("date_end", raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	overview, err := s.api.MemberOverview(r.Context(), actor, r.PathValue("member"), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, info, err := s.api.DetailedExport(r.Context(), actor, r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writer := export.NewCSVWriter(export.Options{
		DateFormat: s.opts.DateFormat,
		TimeFormat: s.opts.TimeFormat,
		Location:   info.From.Location(),
	})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="timesheet-%s.csv"`, info.ID))
	w.WriteHeader(http.StatusOK)
	if err := writer.Write(w, entries); err != nil {
		s.log.Error("failed to write export", "error", err.Error())
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewInvalidInputError("body", strings.TrimSpace(err.Error()), "request body is not valid JSON for this endpoint")
	}
	return nil
}

// dateParam reads the optional "date" query parameter. A bare day is read in
// the organization's timezone; zero means now.
func (s *Server) dateParam(r *http.Request, actor domain.Actor) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, nil
	}
	calc, err := s.api.Calendar(r.Context(), actor)
	if err != nil {
		return time.Time{}, err
	}
	return calc.ParseStart("date", raw)
}
