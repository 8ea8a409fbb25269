// Package schemas holds the JSON Schemas describing the response shape the
// generation backend is asked to produce for each engine operation.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS
