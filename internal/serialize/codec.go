package serialize

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// marshalDeterministic encodes v with map keys sorted, so that encoding the
// same value twice always produces the same bytes — plain msgpack.Marshal
// does not guarantee this since Go map iteration order is randomized, and
// EncodeRoutine's byte-identical round-trip property (§8) depends on it.
func marshalDeterministic(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
