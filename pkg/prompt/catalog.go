// Package prompt は外部モデルへの指示文とボットの応答文言をまとめたカタログを提供します。
// 指示文はバージョン付きの設定値であり、変更はコード変更ではなく設定変更として扱います。
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog は指示文・出力メタデータ・応答文言の集合です。
type Catalog struct {
	Version     string    `yaml:"version"`
	Instruction string    `yaml:"instruction"`
	Output      Output    `yaml:"output"`
	Messages    Messages  `yaml:"messages"`
	Commands    []Command `yaml:"commands"`
}

// Output は配送するファイルのメタデータです。
type Output struct {
	FileName string `yaml:"file_name"`
	Caption  string `yaml:"caption"`
}

// Messages はユーザーに返す文言です。
type Messages struct {
	Processing       string `yaml:"processing"`
	Success          string `yaml:"success"`
	InvalidImage     string `yaml:"invalid_image"`
	ProcessingFailed string `yaml:"processing_failed"`
	DeliveryFailed   string `yaml:"delivery_failed"`
	NotAnImage       string `yaml:"not_an_image"`
	TextHint         string `yaml:"text_hint"`
	SampleMissing    string `yaml:"sample_missing"`
	SampleCaption    string `yaml:"sample_caption"`
	Start            string `yaml:"start"`
	Help             string `yaml:"help"`
	Status           string `yaml:"status"`
	Requirements     string `yaml:"requirements"`
}

// Command はコマンドメニューの1項目です。
type Command struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default は埋め込みカタログを返します。
func Default() (*Catalog, error) {
	return loadDefault()
}

// Load は path のカタログを読み込みます。path が空なら埋め込みカタログを返します。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("カタログの読み込みに失敗しました: %w", err)
	}
	return Parse(data)
}

// Parse は YAML をカタログとして解釈し、検証します。
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("カタログの解析に失敗しました: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は必須項目を確認します。
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("catalog version is required")
	}
	if strings.TrimSpace(c.Instruction) == "" {
		return fmt.Errorf("catalog instruction is required")
	}
	if strings.TrimSpace(c.Output.FileName) == "" {
		return fmt.Errorf("catalog output.file_name is required")
	}
	return nil
}
