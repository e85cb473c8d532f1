package tagtimer

import "github.com/bytedance/sonic"

// Encoder serializes events and snapshots for the journal and for callers of
// EncodeSnapshot.
type Encoder interface {
	Encode(any) ([]byte, error)
	Decode([]byte, any) error
}

// JSONEncoder encodes with sonic's encoding/json compatible config, so the
// bytes match what encoding/json would produce. Decoding uses sonic's fast
// default config. A non-empty Indent pretty-prints.
type JSONEncoder struct {
	Indent string
}

func (e *JSONEncoder) Encode(v any) ([]byte, error) {
	if e.Indent != "" {
		return sonic.ConfigStd.MarshalIndent(v, "", e.Indent)
	}
	return sonic.ConfigStd.Marshal(v)
}

func (*JSONEncoder) Decode(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
