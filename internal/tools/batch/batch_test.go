package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr string
	}{
		{name: "single string", input: "file-1", want: []string{"file-1"}},
		{name: "array of strings", input: []interface{}{"a", "b", "c"}, want: []string{"a", "b", "c"}},
		{name: "duplicates dropped", input: []interface{}{"a", "b", "a"}, want: []string{"a", "b"}},
		{name: "nil input", input: nil, wantErr: "fileIds is required"},
		{name: "empty string", input: "", wantErr: "fileIds cannot be empty"},
		{name: "empty array", input: []interface{}{}, wantErr: "fileIds cannot be empty"},
		{name: "array with non-string", input: []interface{}{"a", 1}, wantErr: "fileIds[1] must be a string"},
		{name: "array with empty string", input: []interface{}{"a", ""}, wantErr: "fileIds[1] cannot be empty"},
		{name: "wrong type", input: 42, wantErr: "fileIds must be a string or array of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "fileIds")
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStringOrArray_Limit(t *testing.T) {
	ids := make([]interface{}, MaxItems+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	_, err := ParseStringOrArray(ids, "fileIds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most")

	_, err = ParseStringOrArray(ids[:MaxItems], "fileIds")
	assert.NoError(t, err)
}

func TestProcessBatch(t *testing.T) {
	results := ProcessBatch(context.Background(), []string{"ok", "bad", "ok2"}, func(_ context.Context, id string) (string, error) {
		if id == "bad" {
			return "", errors.New("boom")
		}
		return "done " + id, nil
	})

	require.Len(t, results, 3)
	assert.Equal(t, NewSuccessResult("ok", "done ok"), results[0])
	assert.Equal(t, Result{ID: "bad", Status: StatusError, Error: "boom"}, results[1])
	assert.Equal(t, StatusSuccess, results[2].Status)
}

func TestProcessBatch_CancelledContextSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	results := ProcessBatch(ctx, []string{"a", "b", "c"}, func(_ context.Context, id string) (string, error) {
		calls++
		cancel()
		return id, nil
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusSkipped, results[1].Status)
	assert.Equal(t, StatusSkipped, results[2].Status)
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		NewSuccessResult("a", "ok"),
		NewErrorResult("b", errors.New("failed")),
		{ID: "c", Status: StatusSkipped},
	})

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 1, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, 1, br.Skipped)
	assert.Len(t, br.Results, 3)
}
