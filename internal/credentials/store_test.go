package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	s := NewStore(8, bcrypt.MinCost)

	hash, err := s.Hash("Str0ngPass!")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngPass!", hash)

	assert.True(t, s.Verify("Str0ngPass!", hash))
	assert.False(t, s.Verify("Str0ngPass?", hash))
	assert.False(t, s.Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	s := NewStore(8, bcrypt.MinCost)

	first, err := s.Hash("Str0ngPass!")
	require.NoError(t, err)
	second, err := s.Hash("Str0ngPass!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, s.Verify("Str0ngPass!", first))
	assert.True(t, s.Verify("Str0ngPass!", second))
}

func TestPasswordPolicy(t *testing.T) {
	s := NewStore(8, bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "too short", password: "a1", wantErr: ErrWeakPassword},
		{name: "no digit", password: "onlyletters", wantErr: ErrWeakPassword},
		{name: "no letter", password: "1234567890", wantErr: ErrWeakPassword},
		{name: "acceptable", password: "letters4nd1", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Hash(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	s := NewStore(8, bcrypt.MinCost)

	assert.False(t, s.Verify("anything1", "not-a-bcrypt-hash"))
	assert.False(t, s.Verify("anything1", ""))
}

func TestNewStoreClampsBadConfig(t *testing.T) {
	s := NewStore(0, 999)

	// Falls back to sane defaults rather than failing open.
	_, err := s.Hash("a1")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := s.Hash("longenough1")
	require.NoError(t, err)
	assert.True(t, s.Verify("longenough1", hash))
}
