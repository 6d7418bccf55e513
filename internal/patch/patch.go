// Package patch defines the canonical patch wire schema and validates it
// against the structural and safety invariants every transport must share.
package patch

import (
	"encoding/base64"
	"encoding/json"
)

// Op is the patch operation. It is a closed set of values; Validate
// rejects any value outside it, so dispatch sites only see these five.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpRename Op = "rename"
	OpChmod  Op = "chmod"
)

// Status tracks the model's own view of whether more patches are coming.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Patch is the single atomic edit the model proposes and the applier
// executes. It mirrors the wire schema in §6 exactly: one struct, tagged
// fields, so every transport (API, tests) shares identical JSON shape.
type Patch struct {
	Op      Op     `json:"op"`
	File    string `json:"file"`
	Body    string `json:"body,omitempty"`
	BodyB64 string `json:"body_b64,omitempty"`
	Target  string `json:"target,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Status  Status `json:"status"`

	hasBody    bool
	hasBodyB64 bool
}

// Parse decodes raw JSON and fully validates it, returning the same error
// kinds Validate would produce for an already-decoded value.
func Parse(raw []byte) (*Patch, error) {
	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &SchemaError{Field: "$", Msg: err.Error()}
	}
	var probe map[string]json.RawMessage
	_ = json.Unmarshal(raw, &probe)
	_, p.hasBody = probe["body"]
	_, p.hasBodyB64 = probe["body_b64"]
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// presence reports whether body/body_b64 were actually set, for a Patch
// built by Parse (hasBody/hasBodyB64 come from the raw JSON probe, so an
// explicit empty string still counts as present) or as a plain struct
// literal (hasBody/hasBodyB64 are always false, so presence falls back to
// a non-empty field).
func (p *Patch) presence() (hasBody, hasBodyB64 bool) {
	return p.hasBody || p.Body != "", p.hasBodyB64 || p.BodyB64 != ""
}

// DecodedBody returns the binary content for create/update, decoding
// body_b64 when present or returning the raw text bytes of body otherwise.
func (p *Patch) DecodedBody() ([]byte, error) {
	if p.IsBinary() {
		return base64.StdEncoding.DecodeString(p.BodyB64)
	}
	return []byte(p.Body), nil
}

// IsBinary reports whether this patch carries body_b64 rather than text body.
func (p *Patch) IsBinary() bool {
	_, hasBodyB64 := p.presence()
	return hasBodyB64
}
