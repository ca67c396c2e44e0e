package conversation

import "errors"

var (
	// ErrInvalidMember は会話メンバーの ID が未指定の場合に返却されます。
	ErrInvalidMember = errors.New("conversation: invalid member")
	// ErrStoreUnavailable はストアに接続できない場合に返却されます。
	ErrStoreUnavailable = errors.New("conversation: store unavailable")
)
