package usecase

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize     = 16
	passwordSize = 32
)

// DATMinter runs the data anchor token pipeline: encrypt, pin, register,
// request proof, request reward. It stays disabled until a registry is wired
// and the feature flag is on.
type DATMinter struct {
	pinner   repository.Pinner
	registry repository.DATRegistry
	enabled  bool
	log      *zap.Logger
}

func NewDATMinter(pinner repository.Pinner, registry repository.DATRegistry, enabled bool, log *zap.Logger) *DATMinter {
	if log == nil {
		log = zap.NewNop()
	}
	return &DATMinter{pinner: pinner, registry: registry, enabled: enabled, log: log.Named("dat")}
}

func (m *DATMinter) Available() bool {
	return m.enabled && m.pinner != nil && m.registry != nil
}

func (m *DATMinter) Mint(ctx context.Context, req entity.DATMintRequest) (*entity.DATMintResult, error) {
	if !m.Available() {
		return nil, fmt.Errorf("%w: DAT minting will be available once mainnet is live", entity.ErrFeatureUnavailable)
	}
	if strings.TrimSpace(req.PrivacyData) == "" {
		return nil, fmt.Errorf("%w: privacyData is required", entity.ErrInvalidRequest)
	}
	if req.FileName == "" {
		req.FileName = entity.DefaultDATFileName
	}
	if req.RewardAmount <= 0 {
		req.RewardAmount = entity.DefaultDATReward
	}

	m.log.Info("encrypting data", zap.String("wallet", req.WalletAddress))
	password, err := newPassword()
	if err != nil {
		return nil, err
	}
	sealed, err := EncryptData([]byte(req.PrivacyData), password)
	if err != nil {
		return nil, err
	}

	m.log.Info("uploading encrypted data", zap.String("file", req.FileName))
	url, err := m.pinner.PinFile(ctx, req.FileName, bytes.NewReader(sealed))
	if err != nil {
		return nil, fmt.Errorf("failed to upload to IPFS: %w", err)
	}

	fileID, err := m.registry.FileIDByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to register file: %w", err)
	}
	if fileID == 0 {
		if fileID, err = m.registry.AddFile(ctx, url); err != nil {
			return nil, fmt.Errorf("failed to register file: %w", err)
		}
	}

	m.log.Info("requesting proof", zap.Uint64("file_id", fileID))
	jobID, err := m.registry.RequestProof(ctx, fileID, req.RewardAmount, url, password)
	if err != nil {
		return nil, fmt.Errorf("failed to request proof: %w", err)
	}

	if err := m.registry.RequestReward(ctx, fileID); err != nil {
		return nil, fmt.Errorf("failed to request reward: %w", err)
	}
	m.log.Info("reward requested", zap.Uint64("file_id", fileID), zap.Uint64("job_id", jobID))

	return &entity.DATMintResult{
		Success: true,
		FileID:  strconv.FormatUint(fileID, 10),
		JobID:   strconv.FormatUint(jobID, 10),
		URL:     url,
	}, nil
}

func newPassword() (string, error) {
	buf := make([]byte, passwordSize)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// EncryptData seals data with AES-256-GCM under a scrypt key derived from
// password. The output is salt || nonce || ciphertext.
func EncryptData(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// DecryptData reverses EncryptData.
func DecryptData(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < saltSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	gcm, err := newGCM(password, sealed[:saltSize])
	if err != nil {
		return nil, err
	}
	rest := sealed[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	return gcm.Open(nil, rest[:gcm.NonceSize()], rest[gcm.NonceSize():], nil)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
