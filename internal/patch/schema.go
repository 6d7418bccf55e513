package patch

import _ "embed"

// SchemaJSON is the canonical JSON schema for the patch wire contract,
// bundled at compile time so `review schema` and any external consumer see
// exactly the shape this package enforces in Go, not a hand-copied
// approximation of it.
//
//go:embed schema.json
var SchemaJSON []byte
