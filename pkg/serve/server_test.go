package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T) *scanner.Core {
	t.Helper()
	core, err := scanner.NewCore(`["시발", "병신", "fuck"]`, nil)
	require.NoError(t, err)
	t.Cleanup(core.Close)
	return core
}

// run feeds input to a fresh server and returns the decoded responses.
func run(t *testing.T, input string) []Response {
	t.Helper()
	out := &bytes.Buffer{}
	srv := NewServer(newTestCore(t), strings.NewReader(input), out)
	require.NoError(t, srv.Run(context.Background()))

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServer_SendsReadyOnStart(t *testing.T) {
	out := &bytes.Buffer{}
	srv := NewServer(newTestCore(t), strings.NewReader(""), out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = srv.Run(ctx)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ready", resp.Type)

	var ready ReadyData
	require.NoError(t, json.Unmarshal(resp.Data, &ready))
	assert.Equal(t, Version, ready.Version)
	assert.Equal(t, 3, ready.WordCount)
}

func TestServer_Check(t *testing.T) {
	responses := run(t, `{"id":"a","type":"check","payload":{"text":"이 병신아"}}`+"\n"+
		`{"id":"b","type":"check","payload":{"text":"안녕"}}`+"\n")
	require.Len(t, responses, 3)

	var hit, miss scanner.CheckResult
	assert.Equal(t, "a", responses[1].ID)
	require.NoError(t, json.Unmarshal(responses[1].Data, &hit))
	assert.True(t, hit.Matched)
	require.NotNil(t, hit.First)
	assert.Equal(t, "병신", hit.First.Word)

	assert.Equal(t, "b", responses[2].ID)
	require.NoError(t, json.Unmarshal(responses[2].Data, &miss))
	assert.False(t, miss.Matched)
}

func TestServer_Scan(t *testing.T) {
	responses := run(t, `{"type":"scan","payload":{"content":"fuck 시발","source":"test"}}`+"\n")
	require.Len(t, responses, 2)
	assert.True(t, responses[1].Success)
	assert.Equal(t, TypeScan, responses[1].Type)

	var result scanner.ScanResult
	require.NoError(t, json.Unmarshal(responses[1].Data, &result))
	assert.Equal(t, "test", result.Source)
	assert.Len(t, result.Matches, 2)
}

func TestServer_ScanBatch(t *testing.T) {
	// EOF may arrive before the loop takes the pending request; the response
	// must still be written.
	for i := range 10 {
		responses := run(t, `{"type":"scan_batch","payload":{"items":[{"source":"s1","content":"clean"},{"source":"s2","content":"시발"}]}}`+"\n")
		require.Len(t, responses, 2, "iteration %d", i)
		assert.True(t, responses[1].Success, "iteration %d", i)
		assert.Equal(t, TypeScanBatch, responses[1].Type, "iteration %d", i)

		var result scanner.BatchScanResult
		require.NoError(t, json.Unmarshal(responses[1].Data, &result))
		assert.Equal(t, 1, result.Total)
	}
}

func TestServer_Mask(t *testing.T) {
	responses := run(t, `{"type":"mask","payload":{"text":"시발 https://x.io/a 병신","strip_urls":true}}`+"\n"+
		`{"type":"mask","payload":{"text":"시발 https://x.io/a"}}`+"\n")
	require.Len(t, responses, 3)

	var stripped, kept MaskData
	require.NoError(t, json.Unmarshal(responses[1].Data, &stripped))
	require.NoError(t, json.Unmarshal(responses[2].Data, &kept))
	assert.Equal(t, "**  **", stripped.Text)
	assert.Equal(t, "** https://x.io/a", kept.Text)
}

func TestServer_GracefulShutdownOnContext(t *testing.T) {
	pr, pw := io.Pipe()
	out := &bytes.Buffer{}
	srv := NewServer(newTestCore(t), pr, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	pw.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServer_CloseCommand(t *testing.T) {
	responses := run(t, `{"type":"close","payload":{}}`+"\n"+`{"type":"check","payload":{"text":"시발"}}`+"\n")
	require.Len(t, responses, 1)
	assert.Equal(t, "ready", responses[0].Type)
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  string
	}{
		{"unknown type", `{"type":"invalid","payload":{}}`, "invalid", "unknown request type"},
		{"bad payload", `{"type":"check","payload":{"text":5}}`, TypeCheck, "cannot unmarshal"},
		{"malformed json", `{invalid json}`, "decode", "invalid character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := run(t, tt.input+"\n")
			require.Len(t, responses, 2)
			assert.False(t, responses[1].Success)
			assert.Equal(t, tt.wantType, responses[1].Type)
			assert.Contains(t, responses[1].Error, tt.wantErr)
		})
	}
}
