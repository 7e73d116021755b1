package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/edge-overlay/internal/capture"
	"github.com/ironsheep/edge-overlay/internal/config"
	"github.com/ironsheep/edge-overlay/internal/detection"
	"github.com/ironsheep/edge-overlay/internal/metrics"
	"github.com/ironsheep/edge-overlay/internal/monitoring"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
)

// ProtocolVersion is the MCP revision the server implements.
const ProtocolVersion = "2024-11-05"

// SnapshotSource publishes overlay snapshots; *pipeline.Pipeline satisfies it.
type SnapshotSource interface {
	Latest() pipeline.Snapshot
}

// StatsSource summarizes tick statistics; *metrics.Recorder satisfies it.
type StatsSource interface {
	Summary() metrics.Summary
}

// Options wires the server to a running overlay. Any field may be left nil.
type Options struct {
	Snapshots SnapshotSource
	Stats     StatsSource
	Oracle    detection.Oracle
	Config    *config.Config
	Version   string
}

// Server handles MCP protocol communication
type Server struct {
	cache     *capture.ImageCache
	snapshots SnapshotSource
	stats     StatsSource
	oracle    detection.Oracle
	cfg       *config.Config
	version   string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. A nil Oracle uses detection.Default and a nil Config
// uses config.Default.
func New(opts Options) *Server {
	s := &Server{
		cache:     capture.NewImageCache(),
		snapshots: opts.Snapshots,
		stats:     opts.Stats,
		oracle:    opts.Oracle,
		cfg:       opts.Config,
		version:   opts.Version,
	}
	if s.oracle == nil {
		s.oracle = detection.Default()
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s
}

// Run serves stdin and stdout until stdin closes.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads requests from in and writes responses to out until in is
// exhausted.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			monitoring.Logf("server: failed to parse request: %v", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				monitoring.Logf("server: failed to encode response: %v", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				monitoring.Logf("server: failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "edge-overlay",
				"version": s.version,
			},
		},
	}
}
