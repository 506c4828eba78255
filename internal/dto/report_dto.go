package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validResolutions = map[string]bool{
	"native": true, "1080p": true, "900p": true,
	"800p": true, "720p": true, "540p": true,
}

var validPresets = map[string]bool{
	"low": true, "medium": true, "high": true, "ultra": true, "custom": true,
}

// SubmitReportRequest carries the multipart form fields of a report
// submission. Numeric fields arrive as strings and are validated here;
// empty optional fields stay nil.
type SubmitReportRequest struct {
	GameID          string `json:"game_id" form:"game_id"`
	DeviceID        string `json:"device_id" form:"device_id"`
	FpsAverage      string `json:"fps_average" form:"fps_average"`
	FpsMin          string `json:"fps_min" form:"fps_min"`
	FpsMax          string `json:"fps_max" form:"fps_max"`
	TdpWatts        string `json:"tdp_watts" form:"tdp_watts"`
	Resolution      string `json:"resolution" form:"resolution"`
	GraphicsPreset  string `json:"graphics_preset" form:"graphics_preset"`
	ProtonVersion   string `json:"proton_version" form:"proton_version"`
	AdditionalNotes string `json:"additional_notes" form:"additional_notes"`
}

// ValidatedReport is the typed result of a successful validation.
type ValidatedReport struct {
	GameID          uuid.UUID
	DeviceID        uuid.UUID
	FpsAverage      int
	FpsMin          *int
	FpsMax          *int
	TdpWatts        int
	Resolution      string
	GraphicsPreset  string
	ProtonVersion   *string
	AdditionalNotes *string
}

// Validate checks every field and returns structured issues. No store
// mutation happens while any issue exists.
func (r *SubmitReportRequest) Validate() (*ValidatedReport, []FieldError) {
	var issues []FieldError
	out := &ValidatedReport{}

	gameID, err := uuid.Parse(strings.TrimSpace(r.GameID))
	if err != nil {
		issues = append(issues, FieldError{Field: "game_id", Message: "invalid game_id"})
	}
	deviceID, err := uuid.Parse(strings.TrimSpace(r.DeviceID))
	if err != nil {
		issues = append(issues, FieldError{Field: "device_id", Message: "invalid device_id"})
	}
	out.GameID, out.DeviceID = gameID, deviceID

	if v, ok := parseIntInRange(r.FpsAverage, 1, 999); ok {
		out.FpsAverage = v
	} else {
		issues = append(issues, FieldError{Field: "fps_average", Message: "FPS average must be an integer 1-999"})
	}

	out.FpsMin, issues = optionalIntInRange(r.FpsMin, 1, 999, "fps_min", "FPS min", issues)
	out.FpsMax, issues = optionalIntInRange(r.FpsMax, 1, 999, "fps_max", "FPS max", issues)

	if v, ok := parseIntInRange(r.TdpWatts, 5, 30); ok {
		out.TdpWatts = v
	} else {
		issues = append(issues, FieldError{Field: "tdp_watts", Message: "TDP must be an integer 5-30"})
	}

	if !validResolutions[r.Resolution] {
		issues = append(issues, FieldError{Field: "resolution", Message: "invalid resolution"})
	}
	out.Resolution = r.Resolution

	if !validPresets[r.GraphicsPreset] {
		issues = append(issues, FieldError{Field: "graphics_preset", Message: "invalid graphics preset"})
	}
	out.GraphicsPreset = r.GraphicsPreset

	if pv := strings.TrimSpace(r.ProtonVersion); pv != "" {
		if len(pv) > 50 {
			issues = append(issues, FieldError{Field: "proton_version", Message: "Proton version too long"})
		} else {
			out.ProtonVersion = &pv
		}
	}

	if notes := strings.TrimSpace(r.AdditionalNotes); notes != "" {
		if len(notes) > 500 {
			issues = append(issues, FieldError{Field: "additional_notes", Message: "notes must be at most 500 characters"})
		} else {
			out.AdditionalNotes = &notes
		}
	}

	// Cross-field bounds, only when the individual fields parsed.
	if out.FpsMin != nil && out.FpsMax != nil && *out.FpsMin > *out.FpsMax {
		issues = append(issues, FieldError{Field: "fps_min", Message: "FPS min cannot be greater than FPS max"})
	}
	if out.FpsAverage > 0 {
		if out.FpsMin != nil && *out.FpsMin > out.FpsAverage {
			issues = append(issues, FieldError{Field: "fps_min", Message: "FPS min cannot be greater than FPS average"})
		}
		if out.FpsMax != nil && *out.FpsMax < out.FpsAverage {
			issues = append(issues, FieldError{Field: "fps_max", Message: "FPS max cannot be lower than FPS average"})
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func parseIntInRange(s string, min, max int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}

func optionalIntInRange(s string, min, max int, field, label string, issues []FieldError) (*int, []FieldError) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, issues
	}
	v, ok := parseIntInRange(t, min, max)
	if !ok {
		return nil, append(issues, FieldError{Field: field, Message: label + " must be an integer 1-999"})
	}
	return &v, issues
}

type SubmitReportResponse struct {
	OK        bool      `json:"ok"`
	ReportID  uuid.UUID `json:"report_id"`
	RequestID string    `json:"request_id,omitempty"`
}

type ApproveReportResponse struct {
	OK           bool      `json:"ok"`
	ReportID     uuid.UUID `json:"report_id"`
	Status       string    `json:"status"`
	GameApproved bool      `json:"game_approved"`
	RequestID    string    `json:"request_id,omitempty"`
}

type RejectReportRequest struct {
	Reason       string `json:"reason"`
	CustomReason string `json:"custom_reason"`
}

type RejectReportResponse struct {
	OK              bool      `json:"ok"`
	ReportID        uuid.UUID `json:"report_id"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason"`
	ModeratedAt     time.Time `json:"moderated_at"`
	ModeratedBy     uuid.UUID `json:"moderated_by"`
	RequestID       string    `json:"request_id,omitempty"`
}

type VoteResponse struct {
	OK        bool   `json:"ok"`
	Upvotes   int    `json:"upvotes"`
	Voted     bool   `json:"voted"`
	RequestID string `json:"request_id,omitempty"`
}

type CreateGameRequest struct {
	Name string `json:"name"`
}
