package cli

import (
	"encoding/json"
)

// Response is the envelope every --json invocation prints exactly once.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed command. Code is stable across releases.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem; Ref names the path or key concerned.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// Meta carries counts for list-shaped results.
type Meta struct {
	Count int `json:"count"`
}

func (a *app) writeJSON(resp Response) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

// outputSuccess prints a successful envelope. Warnings are optional.
func (a *app) outputSuccess(data interface{}, meta *Meta, warnings ...Warning) {
	a.writeJSON(Response{OK: true, Data: data, Meta: meta, Warnings: warnings})
}

func (a *app) outputError(info ErrorInfo) {
	a.writeJSON(Response{Error: &info})
}
