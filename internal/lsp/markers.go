package lsp

import (
	"fmt"

	"linemark/internal/javasyntax"
	"linemark/internal/marker"
	"linemark/internal/source"
	"linemark/internal/trace"
)

const (
	severityWarning = 2
	markerSource    = "linemark"
	markerCode      = "line-marker"
)

// publishMarkers re-parses the open document and sends one warning per marked line.
func (s *Server) publishMarkers(uri string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	list, err := s.markersFor(uri, doc)
	if err != nil {
		// документ остаётся открытым, просто без маркеров
		s.logf("analyze %s: %v", uri, err)
		list = nil
	}

	s.mu.Lock()
	_, hadMarkers := s.published[uri]
	if len(list) > 0 {
		s.published[uri] = struct{}{}
	} else {
		delete(s.published, uri)
	}
	s.mu.Unlock()

	if len(list) == 0 && !hadMarkers {
		return nil
	}
	return s.sendPublish(uri, &doc.version, list)
}

func (s *Server) markersFor(uri string, doc document) ([]lspDiagnostic, error) {
	if !s.config.Loaded() {
		return nil, nil
	}
	path := uriToPath(uri)
	if path == "" {
		path = uri
	}

	ctx := s.baseCtx
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "analyze:"+path, trace.CurrentSpan(ctx))

	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(path, []byte(doc.text)))
	tree, err := javasyntax.Parse(ctx, file, javasyntax.LanguageForLSP(doc.languageID))
	if err != nil {
		span.End("parse failed")
		return nil, err
	}
	defer tree.Close()

	provider := marker.NewProviderForLanguage[javasyntax.Node](tree, s.config, s.language)
	markers := tree.Markers(provider)
	list := make([]lspDiagnostic, 0, len(markers))
	for _, m := range markers {
		start := m.Target.Offset()
		rng := source.Span{File: file.ID, Start: start, End: lineEndOffset(file, m.Line)}
		list = append(list, lspDiagnostic{
			Range:    rangeForSpan(file, rng),
			Severity: severityWarning,
			Code:     markerCode,
			Source:   markerSource,
			Message:  fmt.Sprintf("marked line %d", m.Line),
		})
	}
	span.End(fmt.Sprintf("version %d, %d markers", doc.version, len(list)))
	return list, nil
}
