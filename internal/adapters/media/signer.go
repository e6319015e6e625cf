// Package media signs direct browser uploads to the hosted media service.
// Files never pass through this API.
package media

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"safari_tours/internal/domain"
)

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type Signature struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
	UploadURL string `json:"uploadUrl"`
}

type Signer struct {
	cfg Config
	now func() time.Time
}

func NewSigner(cfg Config) *Signer {
	return &Signer{cfg: cfg, now: time.Now}
}

// Sign returns upload parameters for folder, or the configured default when
// folder is empty.
func (s *Signer) Sign(folder string) (Signature, error) {
	if s == nil || s.cfg.CloudName == "" || s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		return Signature{}, fmt.Errorf("media upload signing: %w", domain.ErrNotConfigured)
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = s.cfg.Folder
	}
	ts := s.now().Unix()
	params := map[string]string{"timestamp": strconv.FormatInt(ts, 10)}
	if folder != "" {
		params["folder"] = folder
	}
	return Signature{
		Timestamp: ts,
		Signature: sign(params, s.cfg.APISecret),
		APIKey:    s.cfg.APIKey,
		CloudName: s.cfg.CloudName,
		Folder:    folder,
		UploadURL: "https://api.cloudinary.com/v1_1/" + s.cfg.CloudName + "/auto/upload",
	}, nil
}

// sign is sha1 over "k1=v1&k2=v2" (keys sorted) with the secret appended.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}
