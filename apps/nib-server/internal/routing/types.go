// Package routing は通話・SMSの経路を決定する。
// 入力のテーブルと登録台帳のスナップショットだけから結果が決まる。
package routing

// Kind は経路決定の種別
type Kind int

const (
	// KindDeclined は他のルーティングモジュールに委ねることを表す
	KindDeclined Kind = iota
	// KindInternal は登録中の端末への経路
	KindInternal
	// KindOutbound は外部回線への経路
	KindOutbound
	// KindConference は会議室への経路
	KindConference
	// KindSMSC はネットワーク内SMSCへの経路
	KindSMSC
	// KindRejected はReasonで通話を拒否することを表す
	KindRejected
)

// String は種別名を返す。
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindOutbound:
		return "outbound"
	case KindConference:
		return "conference"
	case KindSMSC:
		return "smsc"
	case KindRejected:
		return "rejected"
	default:
		return "declined"
	}
}

// 拒否理由
const (
	ReasonForbidden = "forbidden"
	ReasonOffline   = "offline"
)

// 経路種別
const (
	RouteTypeCall = "call"
	RouteTypeMsg  = "msg"
)

// 経路文字列
const (
	SMSCTarget       = "nib_smsc"
	LineOutbound     = "outbound"
	TargetPrefixIMSI = "ybts/IMSI"
	TargetPrefixLine = "line/"
	TargetPrefixConf = "conf/"
)

// Request はcall.routeの入力
type Request struct {
	RouteType string // route_type（空はcall扱い）
	Caller    string
	Called    string
	Username  string // 発信者のIMSI（"IMSI"接頭辞付きも可）
	SMSCalled string // sms.called
}

// Directive は経路決定の結果
type Directive struct {
	Kind          Kind
	Target        string // エンジンへ返すretvalue
	Caller        string // 書き換え後のcaller（変更なしは空）
	CallerNumType string // 書き換え後のcallernumtype（変更なしは空）
	Called        string // 書き換え後のcalled（変更なしは空）
	Line          string
	Reason        string // KindRejectedの理由
}

// Handled はエンジンへprocessed=trueで返すかどうかを返す。
func (d Directive) Handled() bool {
	return d.Kind != KindDeclined
}

func declined() Directive { return Directive{Kind: KindDeclined} }

func rejected(reason string) Directive {
	return Directive{Kind: KindRejected, Reason: reason}
}
