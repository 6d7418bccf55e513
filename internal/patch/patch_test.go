package patch

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CreateValid(t *testing.T) {
	raw := []byte(`{"op":"create","file":"main.go","body":"package main\n","status":"in_progress"}`)
	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, OpCreate, p.Op)
	assert.False(t, p.IsBinary())
}

func TestParse_RejectsBodyAndBodyB64Together(t *testing.T) {
	raw := []byte(`{"op":"create","file":"x.txt","body":"hi","body_b64":"aGk=","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestParse_RejectsNeitherBodyNorBodyB64(t *testing.T) {
	raw := []byte(`{"op":"update","file":"x.txt","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestParse_RejectsPathTraversal(t *testing.T) {
	raw := []byte(`{"op":"create","file":"../etc/passwd","body":"x","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSafety))
}

func TestParse_RejectsDotGitPath(t *testing.T) {
	raw := []byte(`{"op":"create","file":".git/hooks/pre-commit","body":"x","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSafety))
}

func TestParse_RejectsAbsolutePath(t *testing.T) {
	raw := []byte(`{"op":"delete","file":"/etc/passwd","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_DeleteForbidsBody(t *testing.T) {
	raw := []byte(`{"op":"delete","file":"x.txt","body":"nope","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_RenameRequiresTarget(t *testing.T) {
	raw := []byte(`{"op":"rename","file":"old.txt","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_RenameValid(t *testing.T) {
	raw := []byte(`{"op":"rename","file":"old.txt","target":"new.txt","status":"completed"}`)
	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "new.txt", p.Target)
}

func TestParse_ChmodValidatesMode(t *testing.T) {
	raw := []byte(`{"op":"chmod","file":"run.sh","mode":"0644","status":"completed"}`)
	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "0644", p.Mode)
}

func TestParse_ChmodRejectsUnlistedMode(t *testing.T) {
	raw := []byte(`{"op":"chmod","file":"run.sh","mode":"777","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSafety))
}

func TestParse_RejectsUnknownOp(t *testing.T) {
	raw := []byte(`{"op":"truncate","file":"x.txt","status":"completed"}`)
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParse_RejectsInvalidStatus(t *testing.T) {
	raw := []byte(`{"op":"create","file":"x.txt","body":"x","status":"maybe"}`)
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestDecodedBody_Base64(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0xff})
	raw := []byte(`{"op":"create","file":"x.bin","body_b64":"` + body + `","status":"completed"}`)
	p, err := Parse(raw)
	require.NoError(t, err)
	assert.True(t, p.IsBinary())
	decoded, err := p.DecodedBody()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xff}, decoded)
}

func TestDecodedBody_Text(t *testing.T) {
	raw := []byte(`{"op":"create","file":"x.txt","body":"hello","status":"completed"}`)
	p, err := Parse(raw)
	require.NoError(t, err)
	decoded, err := p.DecodedBody()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decoded)
}

func TestValidate_AcceptsStructLiteralWithBodyOnly(t *testing.T) {
	p := &Patch{Op: OpCreate, File: "x.txt", Body: "hello", Status: StatusCompleted}
	assert.NoError(t, p.Validate())
	assert.False(t, p.IsBinary())
}

func TestValidate_AcceptsStructLiteralWithBodyB64Only(t *testing.T) {
	p := &Patch{Op: OpCreate, File: "x.bin", BodyB64: base64.StdEncoding.EncodeToString([]byte{0x00, 0x01}), Status: StatusCompleted}
	require.NoError(t, p.Validate())
	assert.True(t, p.IsBinary())
	decoded, err := p.DecodedBody()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01}, decoded)
}

func TestValidate_RejectsStructLiteralWithBothBodyAndBodyB64(t *testing.T) {
	p := &Patch{Op: OpCreate, File: "x.txt", Body: "hi", BodyB64: "aGk=", Status: StatusCompleted}
	require.Error(t, p.Validate())
	var schemaErr *SchemaError
	assert.True(t, errors.As(p.Validate(), &schemaErr))
}
