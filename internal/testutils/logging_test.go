package testutils

import "testing"

// errorRecorder captures Errorf calls so we can assert on malformed input handling
type errorRecorder struct {
	errors []string
}

func (r *errorRecorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, format)
}

func TestFieldsToMap_WellFormed(t *testing.T) {
	rec := &errorRecorder{}

	got := FieldsToMap(rec, []any{"label", "session-window-1", "count", 3})

	if len(rec.errors) != 0 {
		t.Fatalf("unexpected Errorf calls: %v", rec.errors)
	}
	if got["label"] != "session-window-1" {
		t.Errorf("label = %v, want session-window-1", got["label"])
	}
	if got["count"] != 3 {
		t.Errorf("count = %v, want 3", got["count"])
	}
}

func TestFieldsToMap_MalformedEntries(t *testing.T) {
	tests := []struct {
		name       string
		fields     []any
		wantErrors int
		wantKeys   int
	}{
		{
			name:       "missing value for trailing key",
			fields:     []any{"key1", "value1", "dangling"},
			wantErrors: 1,
			wantKeys:   1,
		},
		{
			name:       "non-string key",
			fields:     []any{42, "value", "key2", "value2"},
			wantErrors: 1,
			wantKeys:   1,
		},
		{
			name:       "empty slice",
			fields:     nil,
			wantErrors: 0,
			wantKeys:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &errorRecorder{}
			got := FieldsToMap(rec, tt.fields)

			if len(rec.errors) != tt.wantErrors {
				t.Errorf("got %d Errorf calls, want %d", len(rec.errors), tt.wantErrors)
			}
			if len(got) != tt.wantKeys {
				t.Errorf("got %d keys, want %d", len(got), tt.wantKeys)
			}
		})
	}
}
