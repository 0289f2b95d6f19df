package lsp

import (
	"context"
	"encoding/json"
	"errors"
)

const settingsSection = "ably"

type documentSettings struct {
	MaxNumberOfProblems int `json:"maxNumberOfProblems"`
}

type lspSettings struct {
	Ably *documentSettings `json:"ably"`
}

func (s *Server) normalizeSettings(ds documentSettings) documentSettings {
	if ds.MaxNumberOfProblems <= 0 {
		ds.MaxNumberOfProblems = s.defaults.MaxNumberOfProblems
	}
	return ds
}

// handleDidChangeConfiguration drops cached per-document settings when the
// client answers workspace/configuration, otherwise replaces the global
// settings from the notification, then revalidates every open document.
func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.log.Warn().Err(err).Msg("didChangeConfiguration: invalid params")
		}
	}
	s.mu.Lock()
	if s.caps.configuration() {
		s.docSettings = make(map[string]documentSettings)
	} else {
		s.global = s.parseGlobalSettings(params.Settings)
	}
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.scheduleValidation(uri)
	}
	return nil
}

func (s *Server) parseGlobalSettings(raw json.RawMessage) documentSettings {
	if len(raw) == 0 {
		return s.defaults
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil || settings.Ably == nil {
		return s.defaults
	}
	return s.normalizeSettings(*settings.Ably)
}

// settingsFor returns the settings of one document, asking the client once
// per document when it supports workspace/configuration.
func (s *Server) settingsFor(ctx context.Context, uri string) documentSettings {
	s.mu.Lock()
	if !s.caps.configuration() {
		global := s.global
		s.mu.Unlock()
		return global
	}
	if cached, ok := s.docSettings[uri]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	ds, err := s.fetchSettings(ctx, uri)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Str("uri", uri).Msg("workspace/configuration failed")
		}
		return s.defaults
	}
	s.mu.Lock()
	if _, open := s.docs[uri]; open {
		s.docSettings[uri] = ds
	}
	s.mu.Unlock()
	return ds
}

func (s *Server) fetchSettings(ctx context.Context, uri string) (documentSettings, error) {
	raw, err := s.request(ctx, "workspace/configuration", configurationParams{
		Items: []configurationItem{{ScopeURI: uri, Section: settingsSection}},
	})
	if err != nil {
		return documentSettings{}, err
	}
	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return documentSettings{}, err
	}
	ds := s.defaults
	if len(results) > 0 {
		if err := json.Unmarshal(results[0], &ds); err != nil {
			return documentSettings{}, err
		}
	}
	return s.normalizeSettings(ds), nil
}
