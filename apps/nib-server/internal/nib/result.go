package nib

import "github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"

// エンジンへ返すエラー理由
const (
	ReasonForbidden    = "forbidden"
	ReasonOffline      = "offline"
	ReasonNoRoute      = "no route"
	ReasonNoAuth       = "noauth"
	ReasonUnacceptable = "unacceptable"
	ReasonFailure      = "failure"
)

// Outcome はハンドラーの処理結果の種別
type Outcome int

const (
	// OutcomeAccepted は要求を受け付けたことを表す
	OutcomeAccepted Outcome = iota
	// OutcomePending は認証の応答待ちを表す
	OutcomePending
	// OutcomeRejected はReasonで拒否したことを表す
	OutcomeRejected
	// OutcomeDeclined は他のモジュールに委ねることを表す
	OutcomeDeclined
)

// String は結果名を返す。
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomePending:
		return "pending"
	case OutcomeRejected:
		return "rejected"
	default:
		return "declined"
	}
}

// Result はハンドラーの処理結果
type Result struct {
	Outcome  Outcome
	Reason   string
	RetValue string
	Params   []extmod.Param
}

// Param はパラメータの値を返す。
func (r Result) Param(key string) string {
	for _, p := range r.Params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

func accepted(kv ...string) Result {
	return Result{Outcome: OutcomeAccepted, Params: pairs(kv)}
}

func rejected(reason string) Result {
	return Result{Outcome: OutcomeRejected, Reason: reason}
}

func declined() Result {
	return Result{Outcome: OutcomeDeclined}
}

// pairs はキーと値の並びから空の値を除いてParamにする。
func pairs(kv []string) []extmod.Param {
	var out []extmod.Param
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		out = append(out, extmod.Param{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

// apply は結果をメッセージへ書き込む。
func apply(m *extmod.Message, r Result) {
	if r.RetValue != "" {
		m.RetValue = r.RetValue
	}
	for _, p := range r.Params {
		m.Set(p.Key, p.Value)
	}
	if r.Reason != "" {
		m.Set("error", r.Reason)
	}
}
