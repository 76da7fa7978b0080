package config

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// rawBytes 将已读入内存的配置内容作为 koanf Provider
type rawBytes []byte

// ReadBytes 返回原始字节
func (r rawBytes) ReadBytes() ([]byte, error) {
	return r, nil
}

// Read 不支持，必须配合 Parser 使用
func (r rawBytes) Read() (map[string]interface{}, error) {
	return nil, errors.New("raw bytes provider requires a parser")
}

// yamlParser 基于 yaml.v3 的 koanf Parser
type yamlParser struct{}

// Unmarshal 解析 YAML
func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal 序列化为 YAML
func (yamlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}
