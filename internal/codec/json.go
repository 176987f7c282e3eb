package codec

import (
	"io"

	"github.com/goccy/go-json"
)

type JSON struct {
	// Indent, when set, pretty-prints marshaled output.
	Indent string
}

func (j JSON) Marshal(v any) ([]byte, error) {
	if j.Indent != "" {
		return json.MarshalIndent(v, "", j.Indent)
	}
	return json.Marshal(v)
}

func (j JSON) NewEncoder(w io.Writer) Encoder {
	enc := json.NewEncoder(w)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func (JSON) NewDecoder(r io.Reader) Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}
