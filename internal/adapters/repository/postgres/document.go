package postgres

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalDocument は値を jsonb 列へ渡す JSON に変換します。nil の場合は empty を返します。
func marshalDocument(v any, empty string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal document: %w", err)
	}
	if bytes.Equal(b, []byte("null")) {
		return []byte(empty), nil
	}
	return b, nil
}

func unmarshalDocument(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
