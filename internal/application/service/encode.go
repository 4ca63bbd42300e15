package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"

	"feedgen/internal/domain/model"
)

// EncodeConfig 输出稳定的 JSON 文档：字段顺序固定，价格为十进制字符串，末尾换行
func EncodeConfig(cfg *model.GeneratedConfig) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("encode config: nil document")
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return append(b, '\n'), nil
}

// DecodeConfig parses a previously generated document
func DecodeConfig(b []byte) (*model.GeneratedConfig, error) {
	var cfg model.GeneratedConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Version != model.ConfigVersion {
		return nil, fmt.Errorf("decode config: unsupported version %d", cfg.Version)
	}
	return &cfg, nil
}

// Checksum sha256 hex of the encoded document
func Checksum(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}
