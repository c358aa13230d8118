package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// subscriberRecord は sub:{IMSI} Hashの格納形式。
// activeは管理画面が書き込む文字列（yes/on/1等）をそのまま保持する。
type subscriberRecord struct {
	MSISDN      string `redis:"msisdn"`
	Active      string `redis:"active"`
	Ki          string `redis:"ki"`
	OP          string `redis:"op"`
	IMSIType    string `redis:"imsi_type"`
	ShortNumber string `redis:"short_number"`
	SQN         string `redis:"sqn"`
}

// toModel はHashの内容をmodel.Subscriberに変換する。
func (r *subscriberRecord) toModel(imsi string) *model.Subscriber {
	return &model.Subscriber{
		IMSI:        imsi,
		MSISDN:      strings.TrimSpace(r.MSISDN),
		Active:      model.ParseActive(r.Active),
		Ki:          strings.TrimSpace(r.Ki),
		OP:          strings.TrimSpace(r.OP),
		IMSIType:    strings.TrimSpace(r.IMSIType),
		ShortNumber: strings.TrimSpace(r.ShortNumber),
		SQN:         strings.TrimSpace(r.SQN),
	}
}

// MapToStruct はmap[string]stringからredisタグ付き構造体にデシリアライズする。
// 文字列フィールドのみ対応する。
func MapToStruct(m map[string]string, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return fmt.Errorf("MapToStruct: pointer required")
	}
	val = val.Elem()
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("redis")
		if tag == "" || tag == "-" {
			continue
		}
		strVal, ok := m[tag]
		if !ok {
			continue
		}
		if val.Field(i).Kind() != reflect.String {
			return fmt.Errorf("field %s: unsupported type: %s", field.Name, val.Field(i).Kind())
		}
		val.Field(i).SetString(strVal)
	}
	return nil
}
