package serialize

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pixelpilot/autocore/internal/domain"
)

// EncodeExecutionInfoTable serializes a per-edge execution-info table (the
// runtimedata.pb contract of §6) the same way EncodeRoutine does: msgpack
// body plus a trailing checksum.
func EncodeExecutionInfoTable(table map[string]domain.ExecutionInfo) ([]byte, error) {
	body, err := marshalDeterministic(table)
	if err != nil {
		return nil, fmt.Errorf("serialize.EncodeExecutionInfoTable: %w", err)
	}
	sum := sha256.Sum256(body)
	return append(body, sum[:]...), nil
}

// DecodeExecutionInfoTable reverses EncodeExecutionInfoTable.
func DecodeExecutionInfoTable(blob []byte) (map[string]domain.ExecutionInfo, error) {
	if len(blob) < sha256.Size {
		return nil, fmt.Errorf("serialize.DecodeExecutionInfoTable: blob too short to carry a checksum")
	}
	split := len(blob) - sha256.Size
	body, wantSum := blob[:split], blob[split:]
	gotSum := sha256.Sum256(body)
	if !bytes.Equal(gotSum[:], wantSum) {
		return nil, fmt.Errorf("serialize.DecodeExecutionInfoTable: checksum mismatch")
	}
	var table map[string]domain.ExecutionInfo
	if err := msgpack.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("serialize.DecodeExecutionInfoTable: %w", err)
	}
	return table, nil
}
