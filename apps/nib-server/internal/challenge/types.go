// Package challenge は加入者ごとの認証チャレンジ（応答検証と再同期）を管理する。
package challenge

// Input は認証イベントの入力。Start, Response, Resync, Aborted のいずれか。
type Input interface {
	input()
}

// Start は応答も再同期トークンも持たない認証要求
type Start struct{}

// Response は端末からのチャレンジ応答（Hex文字列）
type Response struct {
	Value string
}

// Resync は端末からの再同期要求
type Resync struct {
	AUTS string
	RAND string
}

// Aborted はエンジンが認証の失敗を通知した場合の入力
type Aborted struct {
	Reason string
}

func (Start) input()    {}
func (Response) input() {}
func (Resync) input()   {}
func (Aborted) input()  {}

// Outcome は認証ステップの結果種別
type Outcome int

const (
	OutcomePending  Outcome = iota // チャレンジ発行済み、応答待ち
	OutcomeAccepted                // 認証成功
	OutcomeRejected                // 認証失敗
)

// 拒否理由（メッセージのerrorパラメータ値）
const (
	ReasonUnacceptable = "unacceptable"
	ReasonFailure      = "failure"
)

// Result は認証ステップの結果
type Result struct {
	Outcome Outcome
	Reason  string // OutcomeRejected時の理由。空ならエラー値を上書きしない
	RAND    string // OutcomePending時のチャレンジ乱数
	AUTN    string // OutcomePending時のネットワーク認証トークン（3Gのみ）
	Err     error  // 拒否の原因
}

func pending(randHex, autn string) Result {
	return Result{Outcome: OutcomePending, RAND: randHex, AUTN: autn}
}

func rejected(reason string, err error) Result {
	return Result{Outcome: OutcomeRejected, Reason: reason, Err: err}
}

// session はIMSIごとの一時的なチャレンジ状態
type session struct {
	state    State
	protocol string
	rand     string
	expected string
	retries  int
}
