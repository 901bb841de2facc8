package serve

import (
	"encoding/json"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
)

// Request types.
const (
	TypeCheck     = "check"
	TypeScan      = "scan"
	TypeScanBatch = "scan_batch"
	TypeMask      = "mask"
	TypeClose     = "close"
)

// Request represents an incoming NDJSON request
type Request struct {
	ID      string          `json:"id,omitempty"` // echoed in the response
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CheckPayload is the payload for "check" requests
type CheckPayload struct {
	Text string `json:"text"`
}

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []scanner.ContentItem `json:"items"`
}

// MaskPayload is the payload for "mask" requests
type MaskPayload struct {
	Text      string `json:"text"`
	StripURLs bool   `json:"strip_urls"`
}

// MaskData is the data field for "mask" responses
type MaskData struct {
	Text string `json:"text"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready", the request type, or "decode"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version   string `json:"version"`
	WordCount int    `json:"word_count"`
}
