package store

// Valkeyキー
const (
	KeyPrefixSubscriber = "sub:"        // 加入者情報（Hash）
	KeyGeneral          = "nib:general" // 国番号・受け入れ正規表現（Hash）
)

// nib:general のフィールド名
const (
	FieldCountryCode = "country_code"
	FieldRegexp      = "regexp"
)

// FieldSQN は加入者HashのSQNフィールド名
const FieldSQN = "sqn"

// scanCount はSCAN 1回あたりの取得件数の目安
const scanCount = 100

func subscriberKey(imsi string) string {
	return KeyPrefixSubscriber + imsi
}
