package utils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateActivationCode_Range(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code := GenerateActivationCode()
		require.Len(t, code, ActivationCodeLength)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("password1")
	require.NoError(t, err)
	second, err := HashPassword("password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("password1", first))
	assert.True(t, CheckPasswordHash("password1", second))
}

func TestCheckPasswordHash_OneCharacterOff(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)

	for _, candidate := range []string{"password2", "Password1", "password", "password1 ", ""} {
		assert.False(t, CheckPasswordHash(candidate, hash), candidate)
	}
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("password1", []byte("not-a-bcrypt-hash")))
	assert.False(t, CheckPasswordHash("password1", nil))
}

func TestValidateStruct_Digits(t *testing.T) {
	type codeForm struct {
		Code string `validate:"required,len=4,digits"`
	}

	assert.Empty(t, ValidateStruct(codeForm{Code: "1234"}))
	assert.Contains(t, ValidateStruct(codeForm{Code: "+123"}), "Code")
	assert.Contains(t, ValidateStruct(codeForm{Code: "12a4"}), "Code")
	assert.Contains(t, ValidateStruct(codeForm{Code: "123"}), "Code")
}

func TestValidateStruct_MaxBytes(t *testing.T) {
	type passwordForm struct {
		Password string `validate:"required,maxbytes=72"`
	}

	assert.Empty(t, ValidateStruct(passwordForm{Password: strings.Repeat("a", MaxPasswordBytes)}))
	assert.Equal(t, "Maximum length is 72 bytes",
		ValidateStruct(passwordForm{Password: strings.Repeat("a", MaxPasswordBytes+1)})["Password"])

	// 37 runes, 74 bytes
	assert.Contains(t, ValidateStruct(passwordForm{Password: strings.Repeat("é", 37)}), "Password")
	assert.Empty(t, ValidateStruct(passwordForm{Password: strings.Repeat("é", 36)}))
}

func TestHashPassword_LengthLimit(t *testing.T) {
	hash, err := HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash(strings.Repeat("a", MaxPasswordBytes), hash))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Error(t, err)
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, uint8(4), uint8(a.Version()))
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{
				MinConns:    2,
				MaxConns:    10,
				PoolTimeout: 30 * time.Second,
				Retries:     10,
			},
			Activation: ActivationConfig{CodeLength: 4, ExpiryMinutes: 1},
		}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.Database.MinConns = 20
	assert.Error(t, c.Validate())

	c = valid()
	c.Activation.CodeLength = 6
	assert.Error(t, c.Validate())

	c = valid()
	c.Activation.ExpiryMinutes = 0
	assert.Error(t, c.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, splitList(" http://a.test, ,http://b.test "))
	assert.Nil(t, splitList(""))
}
