package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{name: "morning time", input: "09:30", wantHour: 9, wantMinute: 30},
		{name: "midnight", input: "00:00", wantHour: 0, wantMinute: 0},
		{name: "last minute of day", input: "23:59", wantHour: 23, wantMinute: 59},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "missing zero padding", input: "9:30", wantErr: true},
		{name: "no separator", input: "0930", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "non-numeric", input: "ab:cd", wantErr: true},
		{name: "trailing garbage", input: "09:30:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseHHMM(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ValidTime(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
			assert.True(t, ValidTime(tt.input))
		})
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "ordinary date", input: "2024-01-01", want: true},
		{name: "leap day", input: "2024-02-29", want: true},
		{name: "non-leap february 29", input: "2023-02-29", want: false},
		{name: "normalized overflow day", input: "2024-02-30", want: false},
		{name: "missing zero padding", input: "2024-1-1", want: false},
		{name: "wrong separator", input: "2024/01/01", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidDate(tt.input))
		})
	}
}
