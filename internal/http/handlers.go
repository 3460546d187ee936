package http

import (
	"net/http"
	"time"

	"tempo/internal/core"
	"tempo/internal/services"
)

type entryJSON struct {
	ID       int64  `json:"id"`
	UserID   string `json:"user_id"`
	Activity string `json:"activity"`
	Minutes  int    `json:"minutes"`
	Display  string `json:"display"`
	Note     string `json:"note,omitempty"`
	At       string `json:"at"`
	Day      string `json:"day"`
}

type progressJSON struct {
	Activity      string  `json:"activity"`
	TargetMinutes int     `json:"target_minutes"`
	LoggedMinutes int     `json:"logged_minutes"`
	Display       string  `json:"display"`
	Ratio         float64 `json:"ratio"`
}

type totalJSON struct {
	Activity string `json:"activity"`
	Minutes  int    `json:"minutes"`
	Display  string `json:"display"`
	Count    int    `json:"count"`
}

type streakJSON struct {
	Activity   string `json:"activity,omitempty"`
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"last_active,omitempty"`
}

type buttonJSON struct {
	Activity       string `json:"activity"`
	DefaultMinutes int    `json:"default_minutes"`
	Display        string `json:"display"`
}

type logResponse struct {
	Entry    entryJSON     `json:"entry"`
	Progress *progressJSON `json:"progress,omitempty"`
}

func toEntryJSON(e core.Entry, day core.Date) entryJSON {
	return entryJSON{
		ID:       e.ID,
		UserID:   e.UserID,
		Activity: e.Activity,
		Minutes:  e.Minutes,
		Display:  core.FormatMinutes(e.Minutes),
		Note:     e.Note,
		At:       e.At.UTC().Format(time.RFC3339),
		Day:      day.String(),
	}
}

func toProgressJSON(p core.GoalProgress) progressJSON {
	return progressJSON{
		Activity:      p.Activity,
		TargetMinutes: p.TargetMinutes,
		LoggedMinutes: p.LoggedMinutes,
		Display:       core.FormatMinutes(p.LoggedMinutes) + " / " + core.FormatMinutes(p.TargetMinutes),
		Ratio:         p.Ratio,
	}
}

func toTotalJSON(t core.ActivityTotal) totalJSON {
	return totalJSON{
		Activity: t.Activity,
		Minutes:  t.Minutes,
		Display:  core.FormatMinutes(t.Minutes),
		Count:    t.Count,
	}
}

func toStreakJSON(s core.Streak) streakJSON {
	out := streakJSON{
		Activity: s.Activity,
		Current:  s.Current,
		Longest:  s.Longest,
	}
	if !s.LastActive.IsZero() {
		out.LastActive = s.LastActive.String()
	}
	return out
}

func toLogResponse(result services.LogResult) logResponse {
	resp := logResponse{Entry: toEntryJSON(result.Entry, result.Day)}
	if result.Progress != nil {
		p := toProgressJSON(*result.Progress)
		resp.Progress = &p
	}
	return resp
}

// handleLog parses a raw log line and appends the entry.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", `expected {"user_id": "...", "text": "..."}`)
		return
	}

	result, err := s.svc.LogText(r.Context(), sanitizeInput(req.UserID), sanitizeInput(req.Text))
	if err != nil {
		s.logger.WarnContext(r.Context(), "Log request rejected", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLogResponse(result))
}

// handleButtonTap appends an entry from a saved quick button.
func (s *Server) handleButtonTap(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		UserID   string `json:"user_id"`
		Activity string `json:"activity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", `expected {"user_id": "...", "activity": "..."}`)
		return
	}

	result, err := s.svc.LogButton(r.Context(), sanitizeInput(req.UserID), sanitizeInput(req.Activity))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLogResponse(result))
}

// handleToday reports the current day's entries and totals.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing user_id", "pass ?user_id=...")
		return
	}

	summary, err := s.svc.Today(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Today summary failed", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := struct {
		Date         string      `json:"date"`
		Entries      []entryJSON `json:"entries"`
		Totals       []totalJSON `json:"totals"`
		TotalMinutes int         `json:"total_minutes"`
		Display      string      `json:"display"`
	}{
		Date:         summary.Date.String(),
		Entries:      make([]entryJSON, 0, len(summary.Entries)),
		Totals:       make([]totalJSON, 0, len(summary.Totals)),
		TotalMinutes: summary.TotalMinutes,
		Display:      core.FormatMinutes(summary.TotalMinutes),
	}
	for _, e := range summary.Entries {
		resp.Entries = append(resp.Entries, toEntryJSON(e, summary.Date))
	}
	for _, t := range summary.Totals {
		resp.Totals = append(resp.Totals, toTotalJSON(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleWeek reports the current week's totals, counts and streaks.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing user_id", "pass ?user_id=...")
		return
	}

	report, err := s.svc.Week(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Week report failed", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := struct {
		WeekStart    string       `json:"week_start"`
		Totals       []totalJSON  `json:"totals"`
		TotalMinutes int          `json:"total_minutes"`
		Display      string       `json:"display"`
		Streaks      []streakJSON `json:"streaks"`
	}{
		WeekStart:    report.WeekStart.String(),
		Totals:       make([]totalJSON, 0, len(report.Totals)),
		TotalMinutes: report.TotalMinutes,
		Display:      core.FormatMinutes(report.TotalMinutes),
		Streaks:      make([]streakJSON, 0, len(report.Streaks)),
	}
	for _, t := range report.Totals {
		resp.Totals = append(resp.Totals, toTotalJSON(t))
	}
	for _, st := range report.Streaks {
		resp.Streaks = append(resp.Streaks, toStreakJSON(st))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGoals sets a goal (POST) or reports goal progress (GET).
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			UserID        string `json:"user_id"`
			Activity      string `json:"activity"`
			TargetMinutes int    `json:"target_minutes"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", `expected {"user_id": "...", "activity": "...", "target_minutes": N}`)
			return
		}

		goal := core.Goal{
			UserID:        sanitizeInput(req.UserID),
			Activity:      sanitizeInput(req.Activity),
			TargetMinutes: req.TargetMinutes,
		}
		if err := s.svc.SetGoal(r.Context(), goal); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			UserID        string `json:"user_id"`
			Activity      string `json:"activity"`
			TargetMinutes int    `json:"target_minutes"`
		}{goal.UserID, core.NormalizeActivity(goal.Activity), goal.TargetMinutes})

	case http.MethodGet:
		userID, ok := userIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "missing user_id", "pass ?user_id=...")
			return
		}

		progress, err := s.svc.GoalProgress(r.Context(), userID)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Goal progress failed", "error", err)
			writeServiceError(w, err)
			return
		}

		goals := make([]progressJSON, 0, len(progress))
		for _, p := range progress {
			goals = append(goals, toProgressJSON(p))
		}
		writeJSON(w, http.StatusOK, struct {
			Goals []progressJSON `json:"goals"`
		}{goals})

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

// handleStreaks reports streaks, either all of them or one activity's.
func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing user_id", "pass ?user_id=...")
		return
	}

	if activity := sanitizeInput(r.URL.Query().Get("activity")); activity != "" {
		streak, err := s.svc.Streak(r.Context(), userID, activity)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Streaks []streakJSON `json:"streaks"`
		}{[]streakJSON{toStreakJSON(streak)}})
		return
	}

	streaks, err := s.svc.Streaks(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Streaks failed", "error", err)
		writeServiceError(w, err)
		return
	}

	out := make([]streakJSON, 0, len(streaks))
	for _, st := range streaks {
		out = append(out, toStreakJSON(st))
	}
	writeJSON(w, http.StatusOK, struct {
		Streaks []streakJSON `json:"streaks"`
	}{out})
}

// handleButtons saves a quick button (POST) or lists them (GET).
func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			UserID         string `json:"user_id"`
			Activity       string `json:"activity"`
			DefaultMinutes int    `json:"default_minutes"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", `expected {"user_id": "...", "activity": "...", "default_minutes": N}`)
			return
		}

		button := core.QuickButton{
			UserID:         sanitizeInput(req.UserID),
			Activity:       sanitizeInput(req.Activity),
			DefaultMinutes: req.DefaultMinutes,
		}
		if err := s.svc.AddButton(r.Context(), button); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, buttonJSON{
			Activity:       core.NormalizeActivity(button.Activity),
			DefaultMinutes: button.DefaultMinutes,
			Display:        core.FormatMinutes(button.DefaultMinutes),
		})

	case http.MethodGet:
		userID, ok := userIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "missing user_id", "pass ?user_id=...")
			return
		}

		buttons, err := s.svc.ListButtons(r.Context(), userID)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "List buttons failed", "error", err)
			writeServiceError(w, err)
			return
		}

		out := make([]buttonJSON, 0, len(buttons))
		for _, b := range buttons {
			out = append(out, buttonJSON{
				Activity:       b.Activity,
				DefaultMinutes: b.DefaultMinutes,
				Display:        core.FormatMinutes(b.DefaultMinutes),
			})
		}
		writeJSON(w, http.StatusOK, struct {
			Buttons []buttonJSON `json:"buttons"`
		}{out})

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}
