package challenge

import "errors"

var (
	// ErrInvalidState は無効な状態遷移の場合のエラー
	ErrInvalidState = errors.New("invalid challenge state transition")

	// ErrResyncUnresolved は再同期でSQNを求められなかった場合のエラー
	ErrResyncUnresolved = errors.New("resync could not be resolved")
)
