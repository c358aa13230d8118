package subscriber

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/oyaguma3/nib-server-poc/pkg/model"
	"gopkg.in/yaml.v3"
)

// Source は受け入れポリシーの読み込み元を定義する。
type Source interface {
	// Fetch は設定の生データを読み込む
	Fetch(ctx context.Context) (*model.NetworkConfig, error)
}

// SQNWriter はSQNの永続化を定義する。
type SQNWriter interface {
	// UpdateSQN は加入者のSQNを書き込む
	UpdateSQN(ctx context.Context, imsi, sqn string) error
}

// fileDocument はYAML設定ファイルの形式
type fileDocument struct {
	General struct {
		CountryCode string `yaml:"country_code"`
		Regexp      string `yaml:"regexp"`
	} `yaml:"general"`
	Subscribers map[string]fileSubscriber `yaml:"subscribers"`
}

type fileSubscriber struct {
	MSISDN      string `yaml:"msisdn"`
	Active      string `yaml:"active"`
	Ki          string `yaml:"ki"`
	OP          string `yaml:"op"`
	IMSIType    string `yaml:"imsi_type"`
	ShortNumber string `yaml:"short_number"`
	SQN         string `yaml:"sqn"`
}

// FileSource はYAMLファイルから設定を読み込む。
// SQNはファイルに書き戻さない（メモリ上でのみ保持する）。
type FileSource struct {
	path string
}

// NewFileSource は新しいFileSourceを生成する。
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch はファイルを読み込んで解釈する。
func (f *FileSource) Fetch(_ context.Context) (*model.NetworkConfig, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return ParseYAML(data)
}

// UpdateSQN は何もしない。
func (f *FileSource) UpdateSQN(context.Context, string, string) error {
	return nil
}

// ParseYAML はYAML形式の設定を解釈する。加入者はIMSI順に並べる。
func ParseYAML(data []byte) (*model.NetworkConfig, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse subscribers yaml: %w", err)
	}

	cfg := &model.NetworkConfig{
		CountryCode: doc.General.CountryCode,
		Regexp:      doc.General.Regexp,
	}
	for imsi, s := range doc.Subscribers {
		cfg.Subscribers = append(cfg.Subscribers, &model.Subscriber{
			IMSI:        imsi,
			MSISDN:      s.MSISDN,
			Active:      model.ParseActive(s.Active),
			Ki:          s.Ki,
			OP:          s.OP,
			IMSIType:    s.IMSIType,
			ShortNumber: s.ShortNumber,
			SQN:         s.SQN,
		})
	}
	sort.Slice(cfg.Subscribers, func(i, j int) bool {
		return cfg.Subscribers[i].IMSI < cfg.Subscribers[j].IMSI
	})
	return cfg, nil
}
