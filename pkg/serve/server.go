package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/chulbong-kr/wordscan/pkg/scanner"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server answers NDJSON requests against a scanner core.
type Server struct {
	core    *scanner.Core
	encoder *json.Encoder
	decoder *json.Decoder
	logger  scanner.DebugLogger
	mu      sync.Mutex // guards encoder
}

// NewServer creates a new streaming server
func NewServer(core *scanner.Core, in io.Reader, out io.Writer) *Server {
	return &Server{
		core:    core,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
		logger:  scanner.NoopLogger{},
	}
}

// SetLogger routes request tracing to logger.
func (s *Server) SetLogger(logger scanner.DebugLogger) {
	if logger != nil {
		s.logger = logger
	}
}

// Run sends the ready response and then serves requests until a close
// request, EOF or ctx is done. Requests decoded before EOF are still answered.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("", "decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(req Request) bool {
	s.logger.Log("request %q id=%q", req.Type, req.ID)

	var (
		result interface{}
		err    error
	)
	switch req.Type {
	case TypeCheck:
		var p CheckPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			result, err = s.core.Check(p.Text)
		}
	case TypeScan:
		var p ScanPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			result, err = s.core.Scan(p.Content, p.Source)
		}
	case TypeScanBatch:
		var p ScanBatchPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			result, err = s.core.ScanBatch(p.Items)
		}
	case TypeMask:
		var p MaskPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			var text string
			text, err = s.core.Mask(p.Text, p.StripURLs)
			result = MaskData{Text: text}
		}
	case TypeClose:
		return true
	default:
		s.sendError(req.ID, req.Type, "unknown request type: "+req.Type)
		return false
	}

	if err != nil {
		s.sendError(req.ID, req.Type, err.Error())
		return false
	}
	s.send(req.ID, req.Type, result)
	return false
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) sendReady() {
	s.send("", "ready", ReadyData{Version: Version, WordCount: len(s.core.Words())})
}

func (s *Server) send(id, reqType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(id, reqType, err.Error())
		return
	}
	s.write(Response{ID: id, Success: true, Type: reqType, Data: data})
}

func (s *Server) sendError(id, reqType, msg string) {
	s.write(Response{ID: id, Success: false, Type: reqType, Error: msg})
}

func (s *Server) write(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(resp); err != nil {
		s.logger.Log("writing response: %v", err)
	}
}
