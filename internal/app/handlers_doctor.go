package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chandru2600/Vaidra/internal/sdk/sqldb"
	"github.com/Chandru2600/Vaidra/internal/services/sentry"
)

// HandleListCases returns every scan for review, newest first, optionally
// filtered by severity through the status query parameter. The filter is an
// exact match; an off-vocabulary value matches no rows.
func (a *App) HandleListCases(c *gin.Context) {
	severity := strings.ToUpper(strings.TrimSpace(c.Query("status")))

	scans, err := a.db.ListCases(c.Request.Context(), severity)
	if err != nil {
		a.toSentry(c, "list_cases", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveScans, nil)
		return
	}

	cases := make([]CaseResponse, 0, len(scans))
	for _, scan := range scans {
		cases = append(cases, CaseResponse{
			ID:         scan.ID,
			Condition:  scan.Condition,
			Confidence: scan.Confidence,
			Severity:   scan.Severity,
			AssignedTo: scan.AssignedTo,
			CreatedAt:  scan.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, cases)
}

func (a *App) HandleAssignCase(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "assign_case", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if req.ScanID <= 0 || req.DoctorID <= 0 {
		writeError(c, ErrMissingFields, map[string]string{
			"scan_id":   "required_positive_integer",
			"doctor_id": "required_positive_integer",
		})
		return
	}

	if err := a.db.AssignScan(c.Request.Context(), req.ScanID, req.DoctorID); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrScanNotFound, nil)
			return
		}
		a.toSentry(c, "assign_case", "db", sentry.LevelError, err)
		writeError(c, ErrAssignScan, nil)
		return
	}

	c.JSON(http.StatusOK, AssignResponse{OK: true, ScanID: req.ScanID, AssignedTo: req.DoctorID})
}

func (a *App) HandleAddNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "add_note", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if req.ScanID <= 0 {
		writeError(c, ErrInvalidScanID, nil)
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		writeError(c, ErrMissingFields, map[string]string{"note": "note_required"})
		return
	}

	if err := a.db.AppendScanNote(c.Request.Context(), req.ScanID, req.Note); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrScanNotFound, nil)
			return
		}
		a.toSentry(c, "add_note", "db", sentry.LevelError, err)
		writeError(c, ErrAppendNote, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
