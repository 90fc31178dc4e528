package seed

import (
	"bytes"
	_ "embed"
)

//go:embed demo.yaml
var demoYAML []byte

// Demo returns the bundled demo organization
func Demo() (*Fixture, error) {
	return Decode(bytes.NewReader(demoYAML))
}
