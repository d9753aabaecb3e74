// Package security содержит генератор CSP nonce и сборщик Content-Security-Policy.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// NonceSize — 16 байт, в base64 это ровно 24 символа.
const NonceSize = 16

// randReader — источник случайности; подменяется только в тестах.
var randReader io.Reader = rand.Reader

// GenerateNonce возвращает новый nonce для одного ответа.
// Ошибка источника не маскируется: предсказуемый nonce обнуляет смысл CSP.
func GenerateNonce() (string, error) {
	b := make([]byte, NonceSize)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("nonce: crypto/rand: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
