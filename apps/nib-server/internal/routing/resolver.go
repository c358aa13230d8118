package routing

import (
	"strings"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
)

// Registry は登録台帳の参照を定義する。
type Registry interface {
	LookupByIMSI(imsi string) (string, bool)
	LookupByNumber(number string) (string, bool)
}

// Numbers はルーティングで扱う特番
type Numbers struct {
	Conference string // 会議番号
	Welcome    string // IVR番号（空なら無効）
}

// Resolver は経路を決定する。状態を持たない。
type Resolver struct {
	numbers Numbers
}

// NewResolver は新しいResolverを生成する。
func NewResolver(n Numbers) *Resolver {
	return &Resolver{numbers: n}
}

// Resolve はテーブルと台帳からreqの経路を決定する。
func (r *Resolver) Resolve(tbl *subscriber.Table, reg Registry, req Request) Directive {
	switch req.RouteType {
	case RouteTypeMsg:
		if req.Caller == "" || req.Called == "" || req.SMSCalled == "" {
			return declined()
		}
		return Directive{Kind: KindSMSC, Target: SMSCTarget}
	case "", RouteTypeCall:
	default:
		return declined()
	}

	var d Directive
	callerIMSI := StripIMSI(req.Username)

	caller := req.Caller
	if after, ok := strings.CutPrefix(caller, "+"); ok {
		caller = after
		d.Caller = caller
		d.CallerNumType = msisdn.International
	}
	if imsi, ok := strings.CutPrefix(caller, "IMSI"); ok {
		number, found := callerNumber(tbl, reg, imsi)
		if !found {
			return rejected(ReasonForbidden)
		}
		d.Caller = msisdn.Digits(number)
	}

	called := req.Called
	if r.numbers.Welcome != "" && strings.HasSuffix(called, r.numbers.Welcome) {
		return declined()
	}
	if conf := r.numbers.Conference; conf != "" && (called == conf || called == "+"+conf) {
		d.Kind = KindConference
		d.Target = TargetPrefixConf + conf
		return d
	}

	called = ResolveShort(tbl, reg, called)

	if imsi, ok := reg.LookupByNumber(called); ok {
		d.Kind = KindInternal
		d.Target = TargetPrefixIMSI + imsi
		return d
	}

	if tbl.Mode() == subscriber.ModeExplicit {
		if _, ok := tbl.FindByNumber(called); ok {
			// 加入者宛てだが未登録
			return rejected(ReasonOffline)
		}
		if callerIMSI == "" || !tbl.Known(callerIMSI) {
			return rejected(ReasonForbidden)
		}
		return outbound(d, called)
	}

	if _, ok := reg.LookupByIMSI(callerIMSI); callerIMSI != "" && ok {
		return outbound(d, called)
	}
	return rejected(ReasonForbidden)
}

// StripIMSI は"IMSI"接頭辞を取り除く。
func StripIMSI(s string) string {
	return strings.TrimPrefix(s, "IMSI")
}

// callerNumber はIMSI形式の発信者の番号を、設定番号、登録番号の順で探す。
func callerNumber(tbl *subscriber.Table, reg Registry, imsi string) (string, bool) {
	if n, ok := tbl.ConfiguredMSISDN(imsi); ok {
		return n, true
	}
	return reg.LookupByIMSI(imsi)
}

// ResolveShort は短縮番号を持ち主の設定番号か登録番号に置き換える。
// 持ち主が未登録で番号もない場合はそのまま返す。
func ResolveShort(tbl *subscriber.Table, reg Registry, called string) string {
	owner, ok := tbl.ShortNumberOwner(called)
	if !ok {
		return called
	}
	if n, ok := tbl.ConfiguredMSISDN(owner); ok {
		return n
	}
	if n, ok := reg.LookupByIMSI(owner); ok {
		return n
	}
	return called
}

func outbound(d Directive, called string) Directive {
	n := msisdn.Canonical(called)
	d.Kind = KindOutbound
	d.Called = n
	d.Line = LineOutbound
	d.Target = TargetPrefixLine + n
	return d
}
