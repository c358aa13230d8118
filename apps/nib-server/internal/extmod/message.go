// Package extmod はテレフォニーエンジンの外部モジュール行プロトコルのクライアントを提供する。
package extmod

// Param はメッセージパラメータの1項目。
type Param struct {
	Key   string
	Value string
}

// Message はエンジンとやり取りするメッセージ。
// パラメータは受信した順序を保持する。
type Message struct {
	ID        string
	Time      int64
	Name      string
	RetValue  string
	Processed bool
	params    []Param
}

// NewMessage は新しいMessageを生成する。kvはキーと値を交互に並べる。
func NewMessage(name string, kv ...string) *Message {
	m := &Message{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Get はパラメータ値を返す。存在しない場合は空文字列。
func (m *Message) Get(key string) string {
	v, _ := m.Lookup(key)
	return v
}

// Lookup はパラメータ値と存在有無を返す。
func (m *Message) Lookup(key string) (string, bool) {
	for _, p := range m.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Set はパラメータを設定する。既存のキーは値を置き換える。
func (m *Message) Set(key, value string) {
	for i := range m.params {
		if m.params[i].Key == key {
			m.params[i].Value = value
			return
		}
	}
	m.params = append(m.params, Param{Key: key, Value: value})
}

// Del はパラメータを削除する。
func (m *Message) Del(key string) {
	for i := range m.params {
		if m.params[i].Key == key {
			m.params = append(m.params[:i], m.params[i+1:]...)
			return
		}
	}
}

// Params はパラメータのコピーを返す。
func (m *Message) Params() []Param {
	out := make([]Param, len(m.params))
	copy(out, m.params)
	return out
}
