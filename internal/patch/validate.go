package patch

import "encoding/base64"

// Validate enforces every invariant in §3 against an already-decoded Patch:
// exactly one of body/body_b64 for create/update, safe POSIX paths, mode
// whitelist for chmod, and the required/forbidden-field shape per op.
func (p *Patch) Validate() error {
	switch p.Status {
	case StatusInProgress, StatusCompleted:
	default:
		return &SchemaError{Field: "status", Msg: "must be in_progress or completed"}
	}

	hasBody, hasBodyB64 := p.presence()

	switch p.Op {
	case OpCreate, OpUpdate:
		if err := requireSafePath("file", p.File); err != nil {
			return err
		}
		if hasBody == hasBodyB64 {
			return &SchemaError{Field: "body", Msg: "exactly one of body or body_b64 is required"}
		}
		if hasBodyB64 {
			if _, err := base64.StdEncoding.DecodeString(p.BodyB64); err != nil {
				return &SafetyError{Field: "body_b64", Value: p.BodyB64, Msg: "not valid base64"}
			}
		}
		if p.Target != "" {
			return &SchemaError{Field: "target", Msg: "must not be set for " + string(p.Op)}
		}
		if p.Mode != "" {
			return &SchemaError{Field: "mode", Msg: "must not be set for " + string(p.Op)}
		}

	case OpDelete:
		if err := requireSafePath("file", p.File); err != nil {
			return err
		}
		if hasBody || hasBodyB64 || p.Target != "" || p.Mode != "" {
			return &SchemaError{Field: "delete", Msg: "must carry only file and status"}
		}

	case OpRename:
		if err := requireSafePath("file", p.File); err != nil {
			return err
		}
		if err := requireSafePath("target", p.Target); err != nil {
			return err
		}
		if hasBody || hasBodyB64 || p.Mode != "" {
			return &SchemaError{Field: "rename", Msg: "must carry only file, target, and status"}
		}

	case OpChmod:
		if err := requireSafePath("file", p.File); err != nil {
			return err
		}
		if _, err := NormalizeMode(p.Mode); err != nil {
			return err
		}
		if hasBody || hasBodyB64 || p.Target != "" {
			return &SchemaError{Field: "chmod", Msg: "must carry only file, mode, and status"}
		}

	default:
		return &SchemaError{Field: "op", Msg: "unknown op " + string(p.Op)}
	}

	return nil
}

func requireSafePath(field, value string) error {
	if value == "" {
		return &SchemaError{Field: field, Msg: "required"}
	}
	if !IsSafeRepoRelPOSIX(value) {
		return &SafetyError{Field: field, Value: value, Msg: "unsafe or non-POSIX path"}
	}
	return nil
}
