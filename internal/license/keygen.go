// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"
)

var (
	ErrMissingLicense = errors.New("missing license key")
	ErrExpired        = errors.New("license has expired")
)

// Validator checks that the bot may run.
type Validator interface {
	ValidateLicense(ctx context.Context, licenseKey string) error
}

// Config selects the validator. Without a keygen account only a non-empty
// key is required.
type Config struct {
	AccountID    string
	ProductID    string
	ProductToken string
}

// NewValidator returns a keygen validator when cfg names an account and a
// basic one otherwise.
func NewValidator(cfg Config, logger *zap.Logger) Validator {
	if cfg.AccountID == "" {
		return basicValidator{logger: logger.Named("license")}
	}
	return NewKeygenValidator(cfg.AccountID, cfg.ProductToken, cfg.ProductID, logger)
}

type basicValidator struct {
	logger *zap.Logger
}

func (v basicValidator) ValidateLicense(_ context.Context, licenseKey string) error {
	if licenseKey == "" {
		return ErrMissingLicense
	}
	v.logger.Debug("License present, remote validation disabled", zap.String("key", mask(licenseKey)))
	return nil
}

// KeygenValidator validates licenses against keygen.sh.
type KeygenValidator struct {
	logger      *zap.Logger
	accountID   string
	productID   string
	fingerprint func() (string, error)
}

// NewKeygenValidator configures the keygen client globals.
func NewKeygenValidator(accountID, productToken, productID string, logger *zap.Logger) *KeygenValidator {
	keygen.Account = accountID
	keygen.Product = productID
	keygen.Token = productToken

	return &KeygenValidator{
		logger:      logger.Named("license"),
		accountID:   accountID,
		productID:   productID,
		fingerprint: machineFingerprint,
	}
}

// ValidateLicense validates licenseKey for this machine, activating the
// machine on first use.
func (kv *KeygenValidator) ValidateLicense(ctx context.Context, licenseKey string) error {
	if licenseKey == "" {
		return ErrMissingLicense
	}
	kv.logger.Info("Validating license", zap.String("key", mask(licenseKey)))

	fingerprint, err := kv.fingerprint()
	if err != nil {
		return fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	keygen.LicenseKey = licenseKey

	license, err := keygen.Validate(ctx, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		kv.logger.Info("License not activated, attempting activation")
		machine, activateErr := license.Activate(ctx, fingerprint)
		if activateErr != nil {
			return fmt.Errorf("failed to activate license: %w", activateErr)
		}
		kv.logger.Info("License activated",
			zap.String("machine_id", machine.ID),
			zap.String("fingerprint", fingerprint))

	case errors.Is(err, keygen.ErrLicenseExpired):
		return ErrExpired

	case err != nil:
		return fmt.Errorf("license validation failed: %w", err)
	}

	if license == nil {
		return errors.New("license not found")
	}

	kv.logger.Info("License validation successful", zap.String("license_id", license.ID))
	return nil
}

// machineFingerprint hashes the hostname, the first hardware address of an
// up, non-loopback interface and the OS.
func machineFingerprint() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var macs []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 && len(iface.HardwareAddr) > 0 {
			macs = append(macs, iface.HardwareAddr.String())
		}
	}
	sort.Strings(macs)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	mac := "none"
	if len(macs) > 0 {
		mac = macs[0]
	}
	return fingerprintOf(hostname, mac, runtime.GOOS), nil
}

func fingerprintOf(hostname, mac, goos string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", hostname, mac, goos)))
	return fmt.Sprintf("%x", hash)
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..."
}
