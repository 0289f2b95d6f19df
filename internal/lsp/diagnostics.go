package lsp

import (
	"context"
	"errors"
	"time"

	"ably/internal/diag"
	"ably/internal/engine"
	"ably/internal/source"
)

// scheduleValidation supersedes any queued or running pass of uri.
func (s *Server) scheduleValidation(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return
	}
	doc.stop()
	seq := doc.seq
	doc.timer = time.AfterFunc(s.debounce, func() {
		s.validate(uri, seq)
	})
}

func (s *Server) isCurrent(uri string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return ok && doc.seq == seq
}

// validate runs one pass over the buffer snapshot identified by seq and
// publishes it unless a newer snapshot superseded it meanwhile.
func (s *Server) validate(uri string, seq uint64) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || doc.seq != seq || s.engine == nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	doc.cancel = cancel
	doc.timer = nil
	text, version := doc.text, doc.version
	related := s.caps.relatedInformation()
	s.mu.Unlock()
	defer cancel()

	settings := s.settingsFor(ctx, uri)
	fs, id := bufferFile(documentPath(uri), text)
	res, err := s.engine.WithMaxProblems(settings.MaxNumberOfProblems).Check(ctx, fs, id)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Debug().Str("uri", uri).Msg("pass superseded")
			return
		}
		s.log.Error().Err(err).Str("uri", uri).Msg("pass failed")
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if !s.isCurrent(uri, seq) {
		return
	}
	list := toLSPDiagnostics(uri, res, related)
	s.mu.Lock()
	s.published[uri] = struct{}{}
	s.mu.Unlock()
	if err := s.sendPublish(uri, &version, list); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish diagnostics")
		return
	}
	if err := s.sendNotification("custom/loadFiles", []any{loadFilesStream(list, res)}); err != nil {
		s.log.Warn().Err(err).Msg("failed to send report")
	}
}

// loadFilesStream is the report view payload: the diagnostics followed by
// the document score.
func loadFilesStream(list []lspDiagnostic, res *engine.Result) []any {
	out := make([]any, 0, len(list)+1)
	for _, d := range list {
		out = append(out, d)
	}
	return append(out, res.Score.Total)
}

func toLSPDiagnostics(uri string, res *engine.Result, related bool) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		rng := spanRange(res.File, d.Primary)
		ld := lspDiagnostic{
			Range:    rng,
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.ID(),
			Source:   d.Source,
			Message:  d.Message,
		}
		if related {
			for _, n := range d.Notes {
				noteRange := rng
				if !n.Span.Empty() {
					noteRange = spanRange(res.File, n.Span)
				}
				ld.RelatedInformation = append(ld.RelatedInformation, diagnosticRelatedInformation{
					Location: location{URI: uri, Range: noteRange},
					Message:  n.Msg,
				})
			}
		}
		out = append(out, ld)
	}
	return out
}

func spanRange(file *source.File, sp source.Span) lspRange {
	return lspRange{Start: file.Position(sp.Start), End: file.Position(sp.End)}
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return severityError
	case diag.SevInfo:
		return severityInformation
	default:
		return severityWarning
	}
}
