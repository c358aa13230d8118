package nib

import (
	"context"
	"strconv"
	"strings"
)

// コマンド文字列
const (
	cmdListRegistered = "nib list registered"
	cmdListSMS        = "nib list sms"
	cmdListRejected   = "nib list rejected"
	cmdReload         = "nib reload"
	cmdRegistered     = "nib registered "

	helpLine = "  nib {list|reload}\r\n"
)

// CommandRequest はengine.commandの入力
type CommandRequest struct {
	Line     string // 実行するコマンド行（空なら補完要求）
	PartLine string // 補完対象の行
	Partial  string
	PartWord string
	RetValue string // 他のモジュールが設定済みの補完候補
}

// Command は管理コマンドを実行する。処理したコマンドなら出力とtrueを返す。
// 補完要求は候補を追加したretvalueとfalseを返す。
func (s *Service) Command(ctx context.Context, req CommandRequest) (string, bool) {
	if req.Line == "" {
		return complete(req), false
	}

	line := strings.TrimSpace(req.Line)
	switch line {
	case cmdListRegistered:
		var b strings.Builder
		b.WriteString("IMSI            MSISDN \r\n")
		b.WriteString("--------------- ---------------\r\n")
		for _, r := range s.Registrations() {
			b.WriteString(r.IMSI + "   " + r.MSISDN + "\r\n")
		}
		return b.String(), true

	case cmdListSMS:
		var b strings.Builder
		b.WriteString("FROM_IMSI        FROM_MSISDN        TO_IMSI        TO_MSISDN\r\n")
		b.WriteString("--------------- --------------- --------------- ---------------\r\n")
		for _, p := range s.PendingSMS() {
			b.WriteString(p.FromIMSI + "   " + p.FromMSISDN + "   " + p.ToIMSI + "   " + p.ToMSISDN + "\r\n")
		}
		return b.String(), true

	case cmdListRejected:
		var b strings.Builder
		b.WriteString("IMSI            No attempts register \r\n")
		b.WriteString("--------------- ---------------\r\n")
		for _, r := range s.Rejected() {
			b.WriteString(r.IMSI + "    " + strconv.Itoa(r.Count) + "\r\n")
		}
		return b.String(), true

	case cmdReload:
		if _, err := s.Reload(ctx); err != nil {
			return "Failed to update subscribers: " + err.Error() + "\r\n", true
		}
		return "Finished updating subscribers.\r\n", true
	}

	if imsi, ok := strings.CutPrefix(line, cmdRegistered); ok {
		imsi = strings.TrimSpace(imsi)
		if _, found := s.ledger.LookupByIMSI(imsi); found {
			return imsi + " is registered.\r\n", true
		}
		return imsi + " is not registered.\r\n", true
	}
	return "", false
}

// Help はengine.helpの出力に1行追加する。
func Help(ret string) string {
	return ret + helpLine
}

// complete はコマンド補完の候補を追加する。
func complete(req CommandRequest) string {
	ret := req.RetValue
	add := func(word string) {
		if req.PartWord != "" && !strings.HasPrefix(word, req.PartWord) {
			return
		}
		if ret != "" {
			ret += "\t"
		}
		ret += word
	}

	switch req.PartLine {
	case "nib":
		add("list")
		add("reload")
		return ret
	case "nib list":
		add("registered")
		add("sms")
		add("rejected")
		return ret
	}

	switch req.Partial {
	case "n", "ni":
		add("nib")
	}
	return ret
}
