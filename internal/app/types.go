package app

import "time"

type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       *string `json:"name"`
	Age        *int64  `json:"age"`
	Gender     *string `json:"gender"`
	Conditions *string `json:"conditions"`
	Allergies  *string `json:"allergies"`
	Address    *string `json:"address"`
}

type RegisterResponse struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ProfileResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        *string   `json:"name,omitempty"`
	Age         *int64    `json:"age,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Conditions  *string   `json:"conditions,omitempty"`
	Allergies   *string   `json:"allergies,omitempty"`
	Address     *string   `json:"address,omitempty"`
	LocationLat *float64  `json:"location_lat,omitempty"`
	LocationLng *float64  `json:"location_lng,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name        *string  `json:"name"`
	Age         *int64   `json:"age"`
	Gender      *string  `json:"gender"`
	Conditions  *string  `json:"conditions"`
	Allergies   *string  `json:"allergies"`
	Address     *string  `json:"address"`
	LocationLat *float64 `json:"location_lat"`
	LocationLng *float64 `json:"location_lng"`
}

// ScanResult is the public shape of a diagnosis, with steps and warnings
// split back into ordered lists.
type ScanResult struct {
	Condition  string   `json:"condition"`
	Confidence float64  `json:"confidence"`
	Severity   string   `json:"severity"`
	Steps      []string `json:"steps"`
	Warnings   []string `json:"warnings"`
}

type ScanResponse struct {
	ID        int64      `json:"id"`
	Result    ScanResult `json:"result"`
	CreatedAt time.Time  `json:"created_at"`
}

type CaseResponse struct {
	ID         int64     `json:"id"`
	Condition  *string   `json:"condition"`
	Confidence *float64  `json:"confidence"`
	Severity   *string   `json:"severity"`
	AssignedTo *int64    `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
}

type AssignRequest struct {
	ScanID   int64 `json:"scan_id"`
	DoctorID int64 `json:"doctor_id"`
}

type AssignResponse struct {
	OK         bool  `json:"ok"`
	ScanID     int64 `json:"scan_id"`
	AssignedTo int64 `json:"assigned_to"`
}

type NoteRequest struct {
	ScanID int64  `json:"scan_id"`
	Note   string `json:"note"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}
