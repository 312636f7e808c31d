package tables

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// binaryPayload is what EncodeBinary and EncodeCompressedBinary serialize: a
// Tables (plus, when present, its compressed scanner/parser arrays), written
// with rezi's reflection-based binary codec -- the
// same approach dekarrin-tunaq uses to persist its game state, adopted
// here as a faster alternative to the §6 text dump for round-tripping
// between generator runs and the runtime driver.
type binaryPayload struct {
	Type  int
	Plain *Tables
	Scan  *DefaultChainPacked
	Parse *ParserPacked
}

// EncodeBinary packs an uncompressed Tables.
func EncodeBinary(t *Tables) []byte {
	return rezi.EncBinary(&binaryPayload{Type: 0, Plain: t})
}

// EncodeCompressedBinary packs a Tables alongside its compressed scanner
// and parser arrays (§4.H outputs), mirroring WriteCompressedText's type-1
// layout in binary form.
func EncodeCompressedBinary(t *Tables, scan *DefaultChainPacked, parse *ParserPacked) []byte {
	return rezi.EncBinary(&binaryPayload{Type: 1, Plain: t, Scan: scan, Parse: parse})
}

// DecodeBinary reverses EncodeBinary/EncodeCompressedBinary. The returned
// scan/parse are nil for an uncompressed payload.
func DecodeBinary(data []byte) (*Tables, *DefaultChainPacked, *ParserPacked, error) {
	var payload binaryPayload
	if _, err := rezi.DecBinary(data, &payload); err != nil {
		return nil, nil, nil, fmt.Errorf("tables: decoding binary payload: %w", err)
	}
	if payload.Plain == nil {
		return nil, nil, nil, fmt.Errorf("tables: binary payload missing table data")
	}
	payload.Plain.Offsets = NewOffsets(payload.Plain.ProductionCount, payload.Plain.ParserStateCount)
	return payload.Plain, payload.Scan, payload.Parse, nil
}
