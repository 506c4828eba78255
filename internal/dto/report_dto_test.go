package dto

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() SubmitReportRequest {
	return SubmitReportRequest{
		GameID:         uuid.NewString(),
		DeviceID:       uuid.NewString(),
		FpsAverage:     "60",
		TdpWatts:       "15",
		Resolution:     "1080p",
		GraphicsPreset: "medium",
	}
}

func fieldsOf(issues []FieldError) []string {
	fields := make([]string, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

func TestValidateMinimalRequest(t *testing.T) {
	req := baseRequest()

	out, issues := req.Validate()
	require.Nil(t, issues)
	assert.Equal(t, 60, out.FpsAverage)
	assert.Equal(t, 15, out.TdpWatts)
	assert.Nil(t, out.FpsMin)
	assert.Nil(t, out.FpsMax)
	assert.Nil(t, out.ProtonVersion)
	assert.Nil(t, out.AdditionalNotes)
}

func TestValidateNumericBounds(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*SubmitReportRequest)
		field string
	}{
		{"fps zero", func(r *SubmitReportRequest) { r.FpsAverage = "0" }, "fps_average"},
		{"fps too high", func(r *SubmitReportRequest) { r.FpsAverage = "1000" }, "fps_average"},
		{"fps not a number", func(r *SubmitReportRequest) { r.FpsAverage = "sixty" }, "fps_average"},
		{"fps fractional", func(r *SubmitReportRequest) { r.FpsAverage = "59.9" }, "fps_average"},
		{"fps empty", func(r *SubmitReportRequest) { r.FpsAverage = "" }, "fps_average"},
		{"tdp below floor", func(r *SubmitReportRequest) { r.TdpWatts = "4" }, "tdp_watts"},
		{"tdp above ceiling", func(r *SubmitReportRequest) { r.TdpWatts = "31" }, "tdp_watts"},
		{"fps_min out of range", func(r *SubmitReportRequest) { r.FpsMin = "0" }, "fps_min"},
		{"fps_max out of range", func(r *SubmitReportRequest) { r.FpsMax = "1000" }, "fps_max"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mut(&req)
			out, issues := req.Validate()
			assert.Nil(t, out)
			assert.Contains(t, fieldsOf(issues), tc.field)
		})
	}
}

func TestValidateCrossFieldBounds(t *testing.T) {
	req := baseRequest()
	req.FpsMin = "70"
	req.FpsMax = "50"
	// min > max, min > avg, max < avg
	out, issues := req.Validate()
	assert.Nil(t, out)
	assert.Contains(t, fieldsOf(issues), "fps_min")
	assert.Contains(t, fieldsOf(issues), "fps_max")

	req = baseRequest()
	req.FpsMin = "60"
	req.FpsMax = "60"
	_, issues = req.Validate()
	assert.Nil(t, issues, "bounds equal to the average are valid")
}

func TestValidateEnums(t *testing.T) {
	req := baseRequest()
	req.Resolution = "4k"
	_, issues := req.Validate()
	assert.Contains(t, fieldsOf(issues), "resolution")

	req = baseRequest()
	req.GraphicsPreset = "extreme"
	_, issues = req.Validate()
	assert.Contains(t, fieldsOf(issues), "graphics_preset")

	for _, res := range []string{"native", "1080p", "900p", "800p", "720p", "540p"} {
		req = baseRequest()
		req.Resolution = res
		_, issues = req.Validate()
		assert.Nil(t, issues, "resolution %q", res)
	}
}

func TestValidateIDs(t *testing.T) {
	req := baseRequest()
	req.GameID = "not-a-uuid"
	req.DeviceID = ""
	_, issues := req.Validate()
	assert.Contains(t, fieldsOf(issues), "game_id")
	assert.Contains(t, fieldsOf(issues), "device_id")
}

func TestValidateTextFields(t *testing.T) {
	req := baseRequest()
	req.AdditionalNotes = strings.Repeat("x", 501)
	_, issues := req.Validate()
	assert.Contains(t, fieldsOf(issues), "additional_notes")

	req = baseRequest()
	req.ProtonVersion = strings.Repeat("y", 51)
	_, issues = req.Validate()
	assert.Contains(t, fieldsOf(issues), "proton_version")

	req = baseRequest()
	req.AdditionalNotes = "  trimmed  "
	req.ProtonVersion = " GE-Proton9-27 "
	out, issues := req.Validate()
	require.Nil(t, issues)
	assert.Equal(t, "trimmed", *out.AdditionalNotes)
	assert.Equal(t, "GE-Proton9-27", *out.ProtonVersion)
}

func TestValidateCollectsAllIssues(t *testing.T) {
	req := SubmitReportRequest{}
	out, issues := req.Validate()
	assert.Nil(t, out)
	// Every required field reports its own issue in one pass.
	assert.GreaterOrEqual(t, len(issues), 5)
}
