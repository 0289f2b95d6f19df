package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"ably/internal/diag"
	"ably/internal/engine"
	"ably/internal/source"
	"ably/internal/wcag"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
	HelpURI          string       `json:"helpUri,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	CharOffset  uint32 `json:"charOffset"`
	CharLength  uint32 `json:"charLength"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// sarifRuleID prefers the external validator rule id.
func sarifRuleID(d *diag.Diagnostic) string {
	if d.Rule != "" && d.Code == diag.WhaMapped {
		return d.Rule
	}
	return d.Code.ID()
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, results []engine.FileResult, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: "https://www.w3.org/WAI/standards-guidelines/wcag/",
		}},
		Results: []sarifResult{},
	}
	rules := make(map[string]sarifRule)
	ok := true
	for _, fr := range results {
		if fr.Err != nil || fr.Result == nil {
			ok = false
			continue
		}
		uri := fr.Result.File.FormatPath("relative", fs.BaseDir())
		for i := range fr.Result.Diagnostics {
			d := &fr.Result.Diagnostics[i]
			id := sarifRuleID(d)
			if _, seen := rules[id]; !seen {
				rules[id] = sarifRule{
					ID:               id,
					Name:             d.Code.Title(),
					ShortDescription: sarifMessage{Text: d.Code.Title()},
					HelpURI:          wcag.ParseCitation(d.Source).URL(),
				}
			}
			start, end := fs.Resolve(d.Primary)
			res := sarifResult{
				RuleID:  id,
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: d.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: uri},
					Region: sarifRegion{
						StartLine:   start.Line,
						StartColumn: start.Col,
						EndLine:     end.Line,
						EndColumn:   end.Col,
						CharOffset:  d.Primary.Start,
						CharLength:  d.Primary.Len(),
					},
				}}},
			}
			if d.Source != "" || len(d.Notes) > 0 {
				res.Properties = map[string]string{}
				if d.Source != "" {
					res.Properties["wcag"] = d.Source
				}
				if len(d.Notes) > 0 {
					res.Properties["suggestion"] = d.Notes[0].Msg
				}
			}
			run.Results = append(run.Results, res)
		}
	}

	run.Tool.Driver.Rules = make([]sarifRule, 0, len(rules))
	for _, r := range rules {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, r)
	}
	sort.Slice(run.Tool.Driver.Rules, func(i, j int) bool {
		return run.Tool.Driver.Rules[i].ID < run.Tool.Driver.Rules[j].ID
	})
	run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: ok}}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}})
}
