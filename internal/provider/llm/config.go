package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/yogeshhk/MiningResume/internal/common"
)

// Fingerprint identifies the backend configuration for cache keying:
// same endpoint, model, sampling settings and templates always hash the same.
func Fingerprint(cfg common.LLMConfig, t Templates) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%.4f|%d|%s|%s",
		cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.MaxTokens,
		t.SystemPrompt, t.ExtractionTemplate,
	)))
	return hex.EncodeToString(sum[:])
}
