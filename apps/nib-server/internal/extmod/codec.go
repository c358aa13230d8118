package extmod

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 行プロトコルのキーワード
const (
	kwMessageIn   = "%%>message"
	kwMessageOut  = "%%<message"
	kwInstallIn   = "%%>install"
	kwInstallOut  = "%%<install"
	kwSetLocalIn  = "%%>setlocal"
	kwSetLocalOut = "%%<setlocal"
	kwOutput      = "%%>output"
	kwConnect     = "%%>connect"
)

// ErrMalformedLine は解釈できない行を受信した場合のエラー
var ErrMalformedLine = errors.New("malformed protocol line")

// Escape はフィールド値をエスケープする。
// 制御文字と':'は '%' + (c+64)、'%' は "%%" に変換する。extraも同様に扱う。
func Escape(s string, extra byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			b.WriteString("%%")
		case c < 32 || c == ':' || (extra != 0 && c == extra):
			b.WriteByte('%')
			b.WriteByte(c + 64)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape はEscapeの逆変換を行う。
func Unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("%w: dangling escape", ErrMalformedLine)
		}
		switch n := s[i]; {
		case n == '%':
			b.WriteByte('%')
		case n >= 64:
			b.WriteByte(n - 64)
		default:
			return "", fmt.Errorf("%w: invalid escape %%%c", ErrMalformedLine, n)
		}
	}
	return b.String(), nil
}

func encodeParams(b *strings.Builder, params []Param) {
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(Escape(p.Key, '='))
		b.WriteByte('=')
		b.WriteString(Escape(p.Value, 0))
	}
}

// encodeMessage はエンジンへ送るメッセージ行を生成する。
// %%>message:<id>:<time>:<name>:<retvalue>[:<key>=<value>...]
func encodeMessage(m *Message) string {
	var b strings.Builder
	b.WriteString(kwMessageIn)
	b.WriteByte(':')
	b.WriteString(Escape(m.ID, 0))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(m.Time, 10))
	b.WriteByte(':')
	b.WriteString(Escape(m.Name, 0))
	b.WriteByte(':')
	b.WriteString(Escape(m.RetValue, 0))
	encodeParams(&b, m.params)
	return b.String()
}

// encodeReply は受信したメッセージへの応答行を生成する。
// %%<message:<id>:<processed>:<name>:<retvalue>[:<key>=<value>...]
func encodeReply(m *Message) string {
	var b strings.Builder
	b.WriteString(kwMessageOut)
	b.WriteByte(':')
	b.WriteString(Escape(m.ID, 0))
	b.WriteByte(':')
	b.WriteString(strconv.FormatBool(m.Processed))
	b.WriteByte(':')
	b.WriteString(Escape(m.Name, 0))
	b.WriteByte(':')
	b.WriteString(Escape(m.RetValue, 0))
	encodeParams(&b, m.params)
	return b.String()
}

// frameKind は受信行の種別
type frameKind int

const (
	frameMessage  frameKind = iota // エンジンから届いたメッセージ
	frameReply                     // こちらが送ったメッセージへの応答
	frameInstall                   // install応答
	frameSetLocal                  // setlocal応答
	frameError                     // エンジンが解釈できなかった行の通知
)

// frame は受信行の解釈結果
type frame struct {
	kind    frameKind
	msg     *Message
	name    string // install/setlocal対象名
	value   string // setlocal値
	success bool
	text    string // frameError時の本文
}

// parseLine は受信した1行を解釈する。
func parseLine(line string) (*frame, error) {
	if rest, ok := strings.CutPrefix(line, "Error in:"); ok {
		return &frame{kind: frameError, text: strings.TrimSpace(rest)}, nil
	}

	fields := strings.Split(line, ":")
	switch fields[0] {
	case kwMessageIn:
		if len(fields) < 5 {
			return nil, ErrMalformedLine
		}
		m, err := decodeMessage(fields)
		if err != nil {
			return nil, err
		}
		t, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: time %q", ErrMalformedLine, fields[2])
		}
		m.Time = t
		return &frame{kind: frameMessage, msg: m}, nil

	case kwMessageOut:
		if len(fields) < 5 {
			return nil, ErrMalformedLine
		}
		m, err := decodeMessage(fields)
		if err != nil {
			return nil, err
		}
		m.Processed = fields[2] == "true"
		return &frame{kind: frameReply, msg: m}, nil

	case kwInstallOut:
		if len(fields) < 4 {
			return nil, ErrMalformedLine
		}
		name, err := Unescape(fields[2])
		if err != nil {
			return nil, err
		}
		return &frame{kind: frameInstall, name: name, success: fields[3] == "true"}, nil

	case kwSetLocalOut:
		if len(fields) < 4 {
			return nil, ErrMalformedLine
		}
		name, err := Unescape(fields[1])
		if err != nil {
			return nil, err
		}
		value, err := Unescape(fields[2])
		if err != nil {
			return nil, err
		}
		return &frame{kind: frameSetLocal, name: name, value: value, success: fields[3] == "true"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMalformedLine, fields[0])
}

// decodeMessage は id, name, retvalue, パラメータを復号する。
// fields[2]（time/processed）は呼び出し側で解釈する。
func decodeMessage(fields []string) (*Message, error) {
	var err error
	m := &Message{}
	if m.ID, err = Unescape(fields[1]); err != nil {
		return nil, err
	}
	if m.Name, err = Unescape(fields[3]); err != nil {
		return nil, err
	}
	if m.RetValue, err = Unescape(fields[4]); err != nil {
		return nil, err
	}
	for _, kv := range fields[5:] {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		key, err := Unescape(k)
		if err != nil {
			return nil, err
		}
		val, err := Unescape(v)
		if err != nil {
			return nil, err
		}
		m.params = append(m.params, Param{Key: key, Value: val})
	}
	return m, nil
}
