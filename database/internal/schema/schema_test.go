package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/signet/database/internal/schema"
)

var want = schema.Columns{
	"id":        {Type: "uuid"},
	"bucket":    {Type: "text"},
	"issued_at": {Type: "timestamp with time zone"},
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		got            schema.Columns
		wantMissing    []string
		wantMismatched int
	}{
		{
			name: "exact match",
			got: schema.Columns{
				"id":        {Type: "uuid"},
				"bucket":    {Type: "text"},
				"issued_at": {Type: "timestamp with time zone"},
			},
		},
		{
			name: "types compare case-insensitively and extras are ignored",
			got: schema.Columns{
				"id":        {Type: "UUID"},
				"bucket":    {Type: "TEXT"},
				"issued_at": {Type: "timestamp with time zone"},
				"caller":    {Type: "text", Nullable: true},
			},
		},
		{
			name:        "missing columns are sorted",
			got:         schema.Columns{"id": {Type: "uuid"}},
			wantMissing: []string{"bucket", "issued_at"},
		},
		{
			name: "type and nullability mismatches",
			got: schema.Columns{
				"id":        {Type: "text"},
				"bucket":    {Type: "text", Nullable: true},
				"issued_at": {Type: "timestamp with time zone"},
			},
			wantMismatched: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := schema.Compare("issuances", want, tt.got)
			if tt.wantMissing == nil && tt.wantMismatched == 0 {
				assert.NoError(t, err)
				return
			}

			var mismatch *schema.MismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "issuances", mismatch.Table)
			assert.Equal(t, tt.wantMissing, mismatch.Missing)
			assert.Len(t, mismatch.Mismatched, tt.wantMismatched)
			assert.Contains(t, err.Error(), "table issuances schema validation failed")
		})
	}
}
