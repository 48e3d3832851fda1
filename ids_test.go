package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-person-auth"
	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "7", want: 7},
		{raw: "007", want: 7},
		{raw: "9223372036854775807", want: 9223372036854775807},
		{raw: "9223372036854775808", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "12a", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: " 1", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := auth.ParseID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidID)
				assert.Equal(t, 400, auth.StatusFor(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
