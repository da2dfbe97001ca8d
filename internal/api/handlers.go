package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bktutor/session-portal/internal/scheduling"
)

func listAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), r.URL.Query().Get("tutor_id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(list))
		for _, appt := range list {
			out = append(out, newAppointmentResponse(appt))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}
		if req.Name == "" || req.StartTime == "" || req.EndTime == "" || req.Place == "" {
			writeError(w, http.StatusBadRequest, "name, start_time, end_time and place are required")
			return
		}

		start, end, ok := parseWindow(w, req.StartTime, req.EndTime)
		if !ok {
			return
		}
		mode, ok := parseMode(w, req.Mode)
		if !ok {
			return
		}

		maxSlot := req.MaxSlot
		if maxSlot == 0 {
			maxSlot = 1
		}

		appt, err := svc.Create(r.Context(), GetUserID(r.Context()), scheduling.CreateInput{
			Name:      req.Name,
			StartTime: start,
			EndTime:   end,
			Place:     req.Place,
			Mode:      mode,
			MaxSlot:   maxSlot,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "appointment created",
			"data":    newAppointmentResponse(*appt),
		})
	}
}

func rescheduleAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}
		if req.StartTime == "" || req.EndTime == "" || req.Place == "" {
			writeError(w, http.StatusBadRequest, "start_time, end_time and place are required")
			return
		}

		start, end, ok := parseWindow(w, req.StartTime, req.EndTime)
		if !ok {
			return
		}
		mode, ok := parseMode(w, req.Mode)
		if !ok {
			return
		}

		appt, err := svc.Reschedule(r.Context(), id, GetUserID(r.Context()), scheduling.RescheduleInput{
			StartTime: start,
			EndTime:   end,
			Place:     req.Place,
			Mode:      mode,
			MaxSlot:   req.MaxSlot,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "appointment rescheduled",
			"data":    newAppointmentResponse(*appt),
		})
	}
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		if _, err := svc.Cancel(r.Context(), id, GetUserID(r.Context())); err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"message": "appointment cancelled"})
	}
}

func bookAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Book(r.Context(), id, GetUserID(r.Context()))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "booking confirmed",
			"appointment": newAppointmentResponse(*appt),
		})
	}
}

func cancelBookingHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.CancelBooking(r.Context(), id, GetUserID(r.Context()))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "booking cancelled",
			"appointment": newAppointmentResponse(*appt),
		})
	}
}

func saveMinutesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		var req MinutesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		rec, err := svc.SaveMinutes(r.Context(), id, GetUserID(r.Context()), req.Content, req.FileLink, req.StudentResults)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "minutes saved",
			"data": map[string]any{
				"apt_id":          rec.AppointmentID.String(),
				"content":         rec.Content,
				"file_link":       rec.FileLink,
				"student_results": rec.StudentResults,
				"created_at":      rec.CreatedAt.Format(timeLayout),
			},
		})
	}
}

func myNotificationsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, unread, err := svc.Notifications(r.Context(), GetUserID(r.Context()))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]NotificationResponse, 0, len(list))
		for _, n := range list {
			out = append(out, newNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": out,
			"unread_count":  unread,
		})
	}
}

func markNotificationReadHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a valid UUID")
			return
		}

		if err := svc.MarkNotificationRead(r.Context(), GetUserID(r.Context()), id); err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"message": "notification read"})
	}
}

func profileHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context(), GetUserID(r.Context()))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"user": newUserResponse(*user)})
	}
}

func updateProfileHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID := chi.URLParam(r, "id")
		callerID := GetUserID(r.Context())
		if targetID != callerID && GetUserRole(r.Context()) != string(scheduling.RoleAdmin) {
			writeError(w, http.StatusForbidden, "cannot update another user's profile")
			return
		}

		var req ProfilePatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		user, err := svc.UpdateProfile(r.Context(), targetID, scheduling.ProfilePatch{
			Score:            req.Score,
			ConductPoints:    req.ConductPoints,
			ScholarshipLevel: req.ScholarshipLevel,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "profile updated",
			"user":    newUserResponse(*user),
		})
	}
}

func uploadResourceHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResourceUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		res, err := svc.UploadResource(r.Context(), GetUserID(r.Context()), scheduling.Resource{
			Title:       req.Title,
			Link:        req.Link,
			CourseCode:  req.CourseCode,
			Description: req.Description,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "resource uploaded",
			"id":      res.ID.String(),
		})
	}
}

// Helpers

func parseAppointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseWindow(w http.ResponseWriter, startStr, endStr string) (start, end time.Time, ok bool) {
	start, err := time.ParseInLocation(timeLayout, startStr, time.Local)
	if err == nil {
		end, err = time.ParseInLocation(timeLayout, endStr, time.Local)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp format, expected YYYY-MM-DD HH:MM:SS")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseMode(w http.ResponseWriter, raw string) (scheduling.Mode, bool) {
	if raw == "" {
		return "", true
	}
	switch strings.ToUpper(raw) {
	case string(scheduling.ModeOnline):
		return scheduling.ModeOnline, true
	case string(scheduling.ModeOffline):
		return scheduling.ModeOffline, true
	}
	writeError(w, http.StatusBadRequest, "mode must be ONLINE or OFFLINE")
	return "", false
}

// handleServiceError maps scheduling failures onto the API's status codes.
// Conflict-class failures (double cancel, overlaps, booking races) are 409;
// rule violations are 400 with the rule's message.
func handleServiceError(w http.ResponseWriter, err error) {
	var overlap *scheduling.OverlapError

	switch {
	case errors.Is(err, scheduling.ErrUserNotFound),
		errors.Is(err, scheduling.ErrAppointmentNotFound),
		errors.Is(err, scheduling.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduling.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, scheduling.ErrAlreadyCancelled),
		errors.Is(err, scheduling.ErrBookingInProgress),
		errors.As(err, &overlap):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, scheduling.ErrInvalidTimeOrder),
		errors.Is(err, scheduling.ErrInvalidCapacity),
		errors.Is(err, scheduling.ErrCapacityBelowBooked),
		errors.Is(err, scheduling.ErrAlreadyBooked),
		errors.Is(err, scheduling.ErrNotBooked),
		errors.Is(err, scheduling.ErrAppointmentFull),
		errors.Is(err, scheduling.ErrAlreadyStarted),
		errors.Is(err, scheduling.ErrNotOpen),
		errors.Is(err, scheduling.ErrMissingFields):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
