//go:build wasm

package main

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
)

var (
	scanners   = make(map[int]*scanner.Core)
	scannersMu sync.RWMutex
	nextID     int
)

func errorResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

// toJSON marshals v for JS, or returns an error object.
func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal results: " + err.Error())
	}
	return string(data)
}

func lookup(handle int) (*scanner.Core, bool) {
	scannersMu.RLock()
	defer scannersMu.RUnlock()
	core, ok := scanners[handle]
	return core, ok
}

// newScanner creates a new scanner from a words JSON array, or "builtin".
// JS: WordscanNewScanner(wordsJSON) -> {handle} or {error}
func newScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("wordsJSON argument required")
	}

	core, err := scanner.NewCore(args[0].String(), scanner.NoopLogger{})
	if err != nil {
		return errorResult("failed to create scanner: " + err.Error())
	}

	scannersMu.Lock()
	id := nextID
	nextID++
	scanners[id] = core
	scannersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

// check reports whether text contains a word.
// JS: WordscanCheck(handle, text) -> JSON {matched, first} or {error}
func check(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and text arguments required")
	}
	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}

	result, err := core.Check(args[1].String())
	if err != nil {
		return errorResult("check failed: " + err.Error())
	}
	return toJSON(result)
}

// scan scans a single content string.
// JS: WordscanScan(handle, content, source) -> JSON results or {error}
func scan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and content arguments required")
	}
	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}
	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	result, err := core.Scan(args[1].String(), source)
	if err != nil {
		return errorResult("scan failed: " + err.Error())
	}
	return toJSON(result)
}

// scanBatch scans multiple content items.
// JS: WordscanScanBatch(handle, itemsJSON) -> JSON results or {error}
func scanBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and itemsJSON arguments required")
	}
	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}

	var items []scanner.ContentItem
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return errorResult("failed to parse items JSON: " + err.Error())
	}

	result, err := core.ScanBatch(items)
	if err != nil {
		return errorResult("batch scan failed: " + err.Error())
	}
	return toJSON(result)
}

// mask returns text with every word masked. A truthy third argument strips
// URLs first.
// JS: WordscanMask(handle, text, stripURLs) -> string or {error}
func mask(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and text arguments required")
	}
	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}
	stripURLs := len(args) > 2 && args[2].Truthy()

	out, err := core.Mask(args[1].String(), stripURLs)
	if err != nil {
		return errorResult("mask failed: " + err.Error())
	}
	return out
}

// closeScanner closes a scanner and releases resources.
// JS: WordscanCloseScanner(handle)
func closeScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	handle := args[0].Int()

	scannersMu.Lock()
	core, ok := scanners[handle]
	if ok {
		delete(scanners, handle)
	}
	scannersMu.Unlock()

	if !ok {
		return errorResult("invalid scanner handle")
	}

	core.Close()
	return nil
}

// getBuiltinWords returns the built-in words as JSON.
// JS: WordscanGetBuiltinWords() -> JSON words array
func getBuiltinWords(this js.Value, args []js.Value) interface{} {
	words, err := scanner.GetBuiltinWords()
	if err != nil {
		return errorResult("failed to load builtin words: " + err.Error())
	}
	return toJSON(words)
}
