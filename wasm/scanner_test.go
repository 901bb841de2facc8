//go:build wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"testing"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

// newTestScanner creates a scanner from wordsJSON and returns its handle.
func newTestScanner(t *testing.T, wordsJSON string) int {
	t.Helper()
	result := newScanner(js.Value{}, []js.Value{js.ValueOf(wordsJSON)})
	resultMap, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}
	if errMsg, hasError := resultMap["error"]; hasError {
		t.Fatalf("Failed to create scanner: %v", errMsg)
	}
	handle := resultMap["handle"].(int)
	t.Cleanup(func() { closeScanner(js.Value{}, []js.Value{js.ValueOf(handle)}) })
	return handle
}

func TestScannerCreation(t *testing.T) {
	newTestScanner(t, "builtin")
	newTestScanner(t, `["시발", "병신"]`)
	newTestScanner(t, `[{"id":"x.1","text":"바보","category":"insult"}]`)

	result := newScanner(js.Value{}, []js.Value{js.ValueOf("[]")})
	if errMap, ok := result.(map[string]interface{}); !ok || errMap["error"] == nil {
		t.Error("Expected error for an empty word list")
	}
}

func TestCheck(t *testing.T) {
	handle := newTestScanner(t, `["시발"]`)

	out := check(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf("아 시발")})
	jsonStr, ok := out.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", out, out)
	}

	var result scanner.CheckResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if !result.Matched || result.First == nil || result.First.Word != "시발" {
		t.Errorf("Expected a match on 시발, got %+v", result)
	}
}

func TestScanContent(t *testing.T) {
	handle := newTestScanner(t, `["시발"]`)

	out := scan(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf("첫 줄\n아 시발"),
		js.ValueOf("chat:1"),
	})
	jsonStr, ok := out.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", out, out)
	}

	var result scanner.ScanResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("Expected one match, got %d", len(result.Matches))
	}
	if result.Source != "chat:1" {
		t.Errorf("Expected source 'chat:1', got %q", result.Source)
	}
	if line := result.Matches[0].Location.Source.Start.Line; line != 2 {
		t.Errorf("Expected line 2, got %d", line)
	}
}

func TestScanBatch(t *testing.T) {
	handle := newTestScanner(t, `["시발", "병신"]`)

	items := []scanner.ContentItem{
		{Source: "chat:1", Content: "시발"},
		{Source: "chat:2", Content: "안녕"},
		{Source: "chat:3", Content: "병신 시발"},
	}
	itemsJSON, _ := json.Marshal(items)
	out := scanBatch(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf(string(itemsJSON))})

	jsonStr, ok := out.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", out, out)
	}
	var result scanner.BatchScanResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Expected 3 total matches, got %d", result.Total)
	}
	if len(result.Results) != 3 {
		t.Errorf("Expected 3 result items, got %d", len(result.Results))
	}
}

func TestMask(t *testing.T) {
	handle := newTestScanner(t, `["시발"]`)

	out := mask(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf("시발 http://a.b/c"), js.ValueOf(true)})
	if out != "** " {
		t.Errorf("Expected %q, got %v", "** ", out)
	}

	out = mask(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf("시발 http://a.b/c")})
	if out != "** http://a.b/c" {
		t.Errorf("Expected URL to be kept, got %v", out)
	}
}

func TestGetBuiltinWords(t *testing.T) {
	result := getBuiltinWords(js.Value{}, nil)

	jsonStr, ok := result.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", result, result)
	}

	var words []*types.Word
	if err := json.Unmarshal([]byte(jsonStr), &words); err != nil {
		t.Fatalf("Failed to parse words: %v", err)
	}
	if len(words) == 0 {
		t.Error("Expected at least one builtin word")
	}
	for _, w := range words {
		if w.ID == "" || w.Text == "" {
			t.Errorf("Word missing ID or text: %+v", w)
		}
	}
}

func TestCloseScanner(t *testing.T) {
	result := newScanner(js.Value{}, []js.Value{js.ValueOf(`["시발"]`)})
	handle := result.(map[string]interface{})["handle"].(int)

	if out := closeScanner(js.Value{}, []js.Value{js.ValueOf(handle)}); out != nil {
		t.Fatalf("Close failed: %v", out)
	}

	scanResult := scan(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf("시발")})
	if errMap, ok := scanResult.(map[string]interface{}); !ok || errMap["error"] == nil {
		t.Error("Expected error when using closed scanner")
	}
}

func TestInvalidHandle(t *testing.T) {
	for name, fn := range map[string]func(js.Value, []js.Value) interface{}{
		"check": check,
		"scan":  scan,
		"mask":  mask,
	} {
		result := fn(js.Value{}, []js.Value{js.ValueOf(99999), js.ValueOf("test")})
		if errMap, ok := result.(map[string]interface{}); !ok || errMap["error"] == nil {
			t.Errorf("%s: expected error for invalid handle", name)
		}
	}
}
