package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrUnmarshal          = "invalid_request_body"
	ErrMissingFields      = "missing_required_fields"
	ErrInvalidEmail       = "invalid_email"
	ErrEmailTaken         = "email_already_registered"
	ErrInvalidCredentials = "invalid_credentials"
	ErrUnauthorized       = "unauthorized"
	ErrMissingAuthHeader  = "missing_authorization_header"
	ErrInvalidAuthHeader  = "invalid_authorization_header"
	ErrInvalidToken       = "invalid_token"
	ErrUserNotFound       = "user_not_found"
	ErrScanNotFound       = "scan_not_found"
	ErrMissingFile        = "missing_scan_image"
	ErrInvalidScanID      = "invalid_scan_id"
	ErrRateLimited        = "analysis_rate_limited"
	ErrHashPassword       = "internal_hash_error"
	ErrCreateUser         = "internal_create_user_error"
	ErrProcessLogin       = "internal_login_error"
	ErrGenerateTokens     = "internal_generate_tokens_error"
	ErrUpdateProfile      = "internal_update_profile_error"
	ErrSaveUpload         = "internal_save_upload_error"
	ErrStoreUpload        = "internal_store_upload_error"
	ErrAnalyzeScan        = "internal_analysis_error"
	ErrCreateScan         = "internal_create_scan_error"
	ErrRetrieveScans      = "internal_retrieve_scans_error"
	ErrAssignScan         = "internal_assign_scan_error"
	ErrAppendNote         = "internal_append_note_error"
)

var errorStatusMap = map[string]int{
	ErrUnmarshal:          http.StatusBadRequest,
	ErrMissingFields:      http.StatusBadRequest,
	ErrInvalidEmail:       http.StatusBadRequest,
	ErrEmailTaken:         http.StatusBadRequest,
	ErrMissingFile:        http.StatusBadRequest,
	ErrInvalidScanID:      http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrMissingAuthHeader:  http.StatusUnauthorized,
	ErrInvalidAuthHeader:  http.StatusUnauthorized,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrUserNotFound:       http.StatusNotFound,
	ErrScanNotFound:       http.StatusNotFound,
	ErrRateLimited:        http.StatusTooManyRequests,
	ErrHashPassword:       http.StatusInternalServerError,
	ErrCreateUser:         http.StatusInternalServerError,
	ErrProcessLogin:       http.StatusInternalServerError,
	ErrGenerateTokens:     http.StatusInternalServerError,
	ErrUpdateProfile:      http.StatusInternalServerError,
	ErrSaveUpload:         http.StatusInternalServerError,
	ErrStoreUpload:        http.StatusInternalServerError,
	ErrAnalyzeScan:        http.StatusInternalServerError,
	ErrCreateScan:         http.StatusInternalServerError,
	ErrRetrieveScans:      http.StatusInternalServerError,
	ErrAssignScan:         http.StatusInternalServerError,
	ErrAppendNote:         http.StatusInternalServerError,
}

func statusForError(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code string, details map[string]string) {
	c.JSON(statusForError(code), ErrorResponse{Error: code, Details: details})
}
