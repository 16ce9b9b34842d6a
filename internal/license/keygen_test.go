package license

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBasicValidator(t *testing.T) {
	v := NewValidator(Config{}, zap.NewNop())

	assert.ErrorIs(t, v.ValidateLicense(context.Background(), ""), ErrMissingLicense)
	assert.NoError(t, v.ValidateLicense(context.Background(), "ABCD-EFGH-IJKL"))
}

func TestNewValidatorPicksKeygen(t *testing.T) {
	v := NewValidator(Config{AccountID: "acc", ProductID: "prod"}, zap.NewNop())
	kv, ok := v.(*KeygenValidator)
	assert.True(t, ok)
	assert.ErrorIs(t, kv.ValidateLicense(context.Background(), ""), ErrMissingLicense)
}

func TestFingerprint(t *testing.T) {
	a := fingerprintOf("host", "aa:bb", "linux")
	assert.Len(t, a, 64)
	assert.Equal(t, a, fingerprintOf("host", "aa:bb", "linux"))
	assert.NotEqual(t, a, fingerprintOf("host", "aa:bc", "linux"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", mask("short"))
	assert.Equal(t, "ABCDEFGH...", mask("ABCDEFGHIJKL"))
}
