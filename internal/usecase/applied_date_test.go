package usecase_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

func TestCreateJobApplicationCommand_AppliedDateFormats(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{name: "with offset", raw: `"2024-03-01T09:30:00+02:00"`, want: ptrTime(time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC))},
		{name: "without offset", raw: `"2024-03-01T09:30:00"`, want: ptrTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))},
		{name: "fractional without offset", raw: `"2024-03-01T09:30:00.1234567"`, want: ptrTime(time.Date(2024, 3, 1, 9, 30, 0, 123456700, time.UTC))},
		{name: "date only", raw: `"2024-03-01"`, want: ptrTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "null", raw: `null`},
		{name: "empty", raw: `""`},
		{name: "garbage", raw: `"next tuesday"`, wantErr: true},
		{name: "number", raw: `20240301`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := `{"position":"Dev","appliedDate":` + tt.raw + `}`
			var cmd usecase.CreateJobApplicationCommand
			err := json.Unmarshal([]byte(body), &cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Dev", cmd.Position)
			if tt.want == nil {
				assert.Nil(t, cmd.AppliedDate)
				return
			}
			require.NotNil(t, cmd.AppliedDate)
			assert.True(t, tt.want.Equal(*cmd.AppliedDate), "got %s", cmd.AppliedDate)
		})
	}
}

func TestUpdateJobApplicationCommand_AppliedDateWithoutOffset(t *testing.T) {
	t.Parallel()
	var cmd usecase.UpdateJobApplicationCommand
	require.NoError(t, json.Unmarshal([]byte(`{"id":"6f1c2b9e-2f43-4a43-9e0e-6b8f0b0d7a11","position":"Dev","appliedDate":"2024-03-01T09:30:00"}`), &cmd))
	assert.Equal(t, "6f1c2b9e-2f43-4a43-9e0e-6b8f0b0d7a11", cmd.ID.String())
	require.NotNil(t, cmd.AppliedDate)
	assert.True(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC).Equal(*cmd.AppliedDate))
}

func ptrTime(t time.Time) *time.Time { return &t }
