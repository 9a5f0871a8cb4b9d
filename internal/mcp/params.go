package mcp

import (
	"encoding/json"
	"sort"
	"strings"
)

// UnknownField is a parameter the client sent that no tool recognizes
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// AnnotateParams is the input of the annotate and components tools
type AnnotateParams struct {
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
	// Only and Ignore replace the configured filters when present
	Only   []string `json:"only,omitempty"`
	Ignore []string `json:"ignore,omitempty"`

	// Warnings lists unknown fields instead of rejecting the call
	Warnings []UnknownField `json:"-"`

	hasSource bool
}

// UnmarshalJSON accepts unknown fields, recording them as warnings, and a
// single string where a pattern list is expected
func (p *AnnotateParams) UnmarshalJSON(data []byte) error {
	known := map[string]struct{}{
		"source": {}, "filename": {}, "only": {}, "ignore": {},
	}
	raw, warnings, err := collectUnknownFields(data, known)
	if err != nil {
		return err
	}

	if v, ok := raw["source"]; ok {
		if err := json.Unmarshal(v, &p.Source); err != nil {
			return err
		}
		p.hasSource = true
	}
	if v, ok := raw["filename"]; ok {
		if err := json.Unmarshal(v, &p.Filename); err != nil {
			return err
		}
	}
	if p.Only, err = patternList(raw["only"]); err != nil {
		return err
	}
	if p.Ignore, err = patternList(raw["ignore"]); err != nil {
		return err
	}
	p.Warnings = warnings
	return nil
}

// patternList decodes ["a","b"], "a" or "a,b"
func patternList(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	for _, part := range strings.Split(single, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list, nil
}

// InfoParams is the input of the info tool
type InfoParams struct {
	Tool string `json:"tool"`
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the known set
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; !ok {
			warnings = append(warnings, decodeUnknownField(key, value))
		}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Name < warnings[j].Name })
	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}
