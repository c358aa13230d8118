// Package authc はGSM/UMTS認証計算を行う協調コンポーネント（認証ヘルパー）へのクライアントを提供する。
package authc

import "context"

// 認証プロトコル
const (
	ProtocolMilenage = "milenage" // 3G
	ProtocolComp128  = "comp128"  // 2G
)

// Request は認証計算の要求を表す。値はすべてHex文字列。
// AUTSが設定されている場合は再同期要求として扱い、SQNの代わりにAUTSとRANDから端末側SQNを求める。
type Request struct {
	Protocol string `json:"protocol"`
	Ki       string `json:"ki"`
	OP       string `json:"op,omitempty"`
	RAND     string `json:"rand"`
	SQN      string `json:"sqn,omitempty"`
	AUTS     string `json:"auts,omitempty"`
}

// IsResync は再同期要求かどうかを返す。
func (r *Request) IsResync() bool {
	return r.AUTS != ""
}

// Response は認証計算の結果を表す。値はすべて大文字Hex文字列。
type Response struct {
	XRES string `json:"xres,omitempty"` // milenage: 期待応答
	AUTN string `json:"autn,omitempty"` // milenage: ネットワーク認証トークン
	SRES string `json:"sres,omitempty"` // comp128: 期待応答
	SQN  string `json:"sqn,omitempty"`  // 再同期: 端末側SQN
}

// Authenticator は認証計算のインターフェースを定義する。
type Authenticator interface {
	// Authenticate は認証計算を行う
	Authenticate(ctx context.Context, req *Request) (*Response, error)
}

// validate はバックエンド共通の入力チェックを行う。
func validate(req *Request) error {
	switch req.Protocol {
	case ProtocolMilenage, ProtocolComp128:
	default:
		return ErrUnsupportedProtocol
	}
	if req.Ki == "" {
		return ErrMissingKey
	}
	if req.RAND == "" {
		return ErrMissingRAND
	}
	return nil
}
