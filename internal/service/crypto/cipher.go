// Package crypto file: internal/service/crypto/cipher.go
//
// 数据库凭证的认证加密。密钥由配置中的密文口令经 SHA-256 派生，
// 载荷格式为 base64(nonce || ciphertext || tag)。
package crypto

import (
	"DBTalk/internal/core/port"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CredentialCipher 使用 AES-256-GCM 加解密任意可 JSON 序列化的对象
type CredentialCipher struct {
	aead cipher.AEAD
}

var _ port.CredentialCipher = (*CredentialCipher)(nil)

// NewCredentialCipher 根据口令创建加解密器，口令不能为空
func NewCredentialCipher(secret string) (*CredentialCipher, error) {
	if secret == "" {
		return nil, errors.New("加密口令不能为空")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("初始化 AES 失败: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("初始化 GCM 失败: %w", err)
	}
	return &CredentialCipher{aead: aead}, nil
}

// Encrypt 序列化并加密 v
func (c *CredentialCipher) Encrypt(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("序列化凭证失败: %w", err)
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("生成随机数失败: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 校验并解密 payload 到 out。任何篡改或格式错误都返回 port.ErrDecryption。
func (c *CredentialCipher) Decrypt(payload string, out any) error {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: base64 解码失败", port.ErrDecryption)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return fmt.Errorf("%w: 密文长度不足", port.ErrDecryption)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return fmt.Errorf("%w: 认证失败", port.ErrDecryption)
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return fmt.Errorf("%w: 反序列化失败", port.ErrDecryption)
	}
	return nil
}
