package app

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Chandru2600/Vaidra/internal/services/analysis"
	"github.com/Chandru2600/Vaidra/internal/services/sentry"
)

const defaultRecentLimit = 5

// HandleSubmitScan drives the full pipeline: save the upload to local disk,
// mirror it to object storage, run the analysis and persist the shaped
// record. The user_id form field is optional; anonymous scans are allowed.
func (a *App) HandleSubmitScan(c *gin.Context) {
	file, err := c.FormFile("scan_image")
	if err != nil {
		writeError(c, ErrMissingFile, nil)
		return
	}

	var userID *int64
	if raw := c.PostForm("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, ErrUnmarshal, map[string]string{"user_id": "must_be_integer"})
			return
		}
		userID = &id
	}

	base := filepath.Base(file.Filename)
	stamped := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)
	localPath := filepath.Join(a.uploadDir, stamped)
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		a.toSentry(c, "submit_scan", "save_upload", sentry.LevelError, err)
		writeError(c, ErrSaveUpload, nil)
		return
	}

	objectName := fmt.Sprintf("cases/%x_%s", uuid.New(), base)
	stored, err := a.storage.Store(c.Request.Context(), localPath, objectName)
	if err != nil {
		a.toSentry(c, "submit_scan", "object_storage", sentry.LevelError, err)
		writeError(c, ErrStoreUpload, nil)
		return
	}

	env, err := a.analysis.Analyze(c.Request.Context(), localPath)
	if err != nil {
		if errors.Is(err, analysis.ErrRateLimited) {
			writeError(c, ErrRateLimited, nil)
			return
		}
		a.toSentry(c, "submit_scan", "analysis", sentry.LevelError, err)
		writeError(c, ErrAnalyzeScan, nil)
		return
	}

	newScan := normalizeEnvelope(env)
	newScan.UserID = userID
	newScan.Filename = stamped
	newScan.S3Key = stored.Key

	scan, err := a.db.CreateScan(c.Request.Context(), newScan)
	if err != nil {
		a.toSentry(c, "submit_scan", "db", sentry.LevelError, err)
		writeError(c, ErrCreateScan, nil)
		return
	}

	c.JSON(http.StatusOK, scanResponse(scan))
}

func (a *App) HandleRecentScans(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	scans, err := a.db.ListRecentScans(c.Request.Context(), limit)
	if err != nil {
		a.toSentry(c, "recent_scans", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveScans, nil)
		return
	}

	responses := make([]ScanResponse, 0, len(scans))
	for _, scan := range scans {
		responses = append(responses, scanResponse(scan))
	}

	c.JSON(http.StatusOK, responses)
}
