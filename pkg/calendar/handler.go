package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/internal/rest"
)

type Handler struct {
	calendar *Service
}

type EventDTO struct {
	Title          string     `json:"title"`
	Date           civil.Date `json:"date"`
	Time           string     `json:"time"`
	Description    string     `json:"description"`
	Recurrence     Recurrence `json:"recurrence"`
	CustomInterval int        `json:"customInterval"`
	Color          string     `json:"color"`
}

type RescheduleDTO struct {
	Date civil.Date `json:"date"`
}

type ConflictResponse struct {
	Error     string       `json:"error"`
	Conflicts []Occurrence `json:"conflicts"`
}

type OutcomeDTO struct {
	Event        Event `json:"event"`
	Materialized bool  `json:"materialized,omitempty"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var events []Occurrence
	switch {
	case query.Get("from") != "" || query.Get("to") != "":
		from, err := civil.ParseDate(query.Get("from"))
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in YYYY-MM-DD format")
			return
		}
		to, err := civil.ParseDate(query.Get("to"))
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in YYYY-MM-DD format")
			return
		}
		events = h.calendar.Between(r.Context(), from, to)
		if term := strings.ToLower(strings.TrimSpace(query.Get("q"))); term != "" {
			filtered := events[:0]
			for _, occ := range events {
				if matches(occ, term) {
					filtered = append(filtered, occ)
				}
			}
			events = filtered
		}
	default:
		events = h.calendar.Search(r.Context(), query.Get("q"))
	}
	if events == nil {
		events = []Occurrence{}
	}
	log.Tracef("Events returned: %d", len(events))
	rest.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) GetBaseEvents(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, h.calendar.BaseEvents(r.Context()))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	outcome, err := h.calendar.Create(r.Context(), dtoToDraft(dto), isForced(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOutcome(w, outcome, http.StatusCreated)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	eventId := mux.Vars(r)["eventId"]
	outcome, err := h.calendar.Update(r.Context(), eventId, dtoToDraft(dto), isForced(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOutcome(w, outcome, http.StatusOK)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	if err := h.calendar.Delete(r.Context(), eventId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RescheduleOccurrence(w http.ResponseWriter, r *http.Request) {
	occurrenceId, err := ParseOccurrenceID(mux.Vars(r)["occurrenceId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid occurrence id", err.Error())
		return
	}
	var dto RescheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	outcome, err := h.calendar.RescheduleByID(r.Context(), occurrenceId, dto.Date, isForced(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if outcome.Materialized {
		status = http.StatusCreated
	}
	writeOutcome(w, outcome, status)
}

func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	today := h.calendar.Today()
	year, month := today.Year, today.Month
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number")
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be between 1 and 12")
			return
		}
		month = time.Month(parsed)
	}
	rest.WriteJSON(w, http.StatusOK, h.calendar.Month(r.Context(), year, month))
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=calendar.ics")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ExportICS(h.calendar.BaseEvents(r.Context()), h.calendar.clock.Now()))); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func writeOutcome(w http.ResponseWriter, outcome Outcome, successStatus int) {
	if outcome.Conflicted() {
		rest.WriteJSON(w, http.StatusConflict, ConflictResponse{
			Error:     "Conflicting events at the requested date and time",
			Conflicts: outcome.Conflicts,
		})
		return
	}
	rest.WriteJSON(w, successStatus, OutcomeDTO{Event: outcome.Event, Materialized: outcome.Materialized})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Not found", err.Error())
	default:
		log.Errorf("calendar request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", "")
	}
}

func isForced(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return force
}

func dtoToDraft(dto EventDTO) Draft {
	return Draft{
		Title:          dto.Title,
		Date:           dto.Date,
		Time:           dto.Time,
		Description:    dto.Description,
		Recurrence:     dto.Recurrence,
		CustomInterval: dto.CustomInterval,
		Color:          dto.Color,
	}
}
