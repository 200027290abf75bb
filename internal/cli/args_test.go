package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fitexport/internal/fitbit"
)

func TestExportArgs_Validate(t *testing.T) {
	tests := []struct {
		name    string
		args    ExportArgs
		wantErr []string
	}{
		{
			name: "minimal",
			args: ExportArgs{BaseDate: "2023-01-01", DetailLevel: "1min", OutputFile: "out.json"},
		},
		{
			name: "today with window",
			args: ExportArgs{BaseDate: "today", DetailLevel: "1sec", OutputFile: "out.json", StartTime: "08:00", EndTime: "09:00"},
		},
		{
			name:    "bad date",
			args:    ExportArgs{BaseDate: "2023/01/01", DetailLevel: "1min", OutputFile: "out.json"},
			wantErr: []string{`base_date "2023/01/01" must be a date in yyyy-MM-dd format`},
		},
		{
			name:    "bad detail level",
			args:    ExportArgs{BaseDate: "2023-01-01", DetailLevel: "15min", OutputFile: "out.json"},
			wantErr: []string{`detail_level "15min" must be one of: 1sec, 1min`},
		},
		{
			name:    "missing output",
			args:    ExportArgs{BaseDate: "2023-01-01", DetailLevel: "1min"},
			wantErr: []string{"output_file is required"},
		},
		{
			name:    "start without end",
			args:    ExportArgs{BaseDate: "2023-01-01", DetailLevel: "1min", OutputFile: "out.json", StartTime: "08:00"},
			wantErr: []string{"--start_time and --end_time must be given together"},
		},
		{
			name:    "malformed time",
			args:    ExportArgs{BaseDate: "2023-01-01", DetailLevel: "1min", OutputFile: "out.json", StartTime: "8am", EndTime: "09:00"},
			wantErr: []string{`--start_time "8am" must be a time in HH:mm format`},
		},
		{
			name: "several problems reported together",
			args: ExportArgs{BaseDate: "yesterday", DetailLevel: "1h", OutputFile: "out.json"},
			wantErr: []string{
				"invalid arguments:",
				`base_date "yesterday"`,
				`detail_level "1h"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}

func TestExportArgs_Params(t *testing.T) {
	args := ExportArgs{BaseDate: "2023-01-01", DetailLevel: "1sec", OutputFile: "out.json", StartTime: "08:00", EndTime: "09:00"}

	params := args.Params()

	assert.Equal(t, fitbit.IntradayParams{
		Resource:    fitbit.ResourceHeart,
		BaseDate:    "2023-01-01",
		DetailLevel: fitbit.DetailLevel1Sec,
		StartTime:   "08:00",
		EndTime:     "09:00",
	}, params)
	assert.NoError(t, params.Validate())
}
