package lsp

import "encoding/json"

// handleDidChangeConfiguration accepts the same shape as initializationOptions.
// Malformed settings are logged and ignored.
func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.logf("ignoring configuration: %v", err)
			return nil
		}
	}
	s.applySettings(params.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logf("ignoring settings: %v", err)
		return
	}
	if settings.Linemark.Trace == nil {
		return
	}
	s.mu.Lock()
	s.traceLSP = *settings.Linemark.Trace
	s.mu.Unlock()
}

func (s *Server) tracing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}
