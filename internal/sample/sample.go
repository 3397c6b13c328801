// Package sample embeds the demonstration dataset shown when no other data
// is available.
package sample

import _ "embed"

// Name identifies the embedded dataset as a load source.
const Name = "embedded-sample"

//go:embed sample.csv
var csvData []byte

// CSV returns a copy of the embedded sample file.
func CSV() []byte {
	out := make([]byte, len(csvData))
	copy(out, csvData)
	return out
}
