package otpcode

import (
	"math"
	"testing"

	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hotpSecret = "N5WUS53LQBPNVSEE6CH5WHATMVAONRMJ"

// Codes for hotpSecret at counters 0..24 in the compatible encoding.
var hotpVectors = []string{
	"852775", "551063", "206217", "660610", "418804",
	"510107", "483652", "298846", "900313", "677964",
	"574075", "711461", "289665", "416564", "853946",
	"010753", "204263", "459203", "667068", "289539",
	"093644", "727192", "334293", "339042", "793032",
}

func hotpAccount(counter uint64) models.Account {
	return models.NewHOTPAccount(hotpSecret, models.EncodingCompat).WithCounter(counter)
}

func TestHOTP_Compute_Vectors(t *testing.T) {
	h := NewHOTP()
	for c, want := range hotpVectors {
		got, err := h.Compute(hotpSecret, uint64(c))
		require.NoError(t, err)
		assert.Equalf(t, want, got, "counter %d", c)
	}
}

func TestHOTP_Compute_Deterministic(t *testing.T) {
	h := NewHOTP()
	a, err := h.Compute(hotpSecret, 42)
	require.NoError(t, err)
	b, err := h.Compute(hotpSecret, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, Digits)
}

func TestHOTP_Compute_Overflow(t *testing.T) {
	h := NewHOTP()
	_, err := h.Compute(hotpSecret, math.MaxUint32)
	require.NoError(t, err)

	_, err = h.Compute(hotpSecret, math.MaxUint32+1)
	require.ErrorIs(t, err, ErrCounterOverflow)
}

func TestHOTP_ComputeFor_RFC(t *testing.T) {
	h := NewHOTP()
	a := models.NewHOTPAccount(hotpSecret, models.EncodingRFC)

	want := []string{"627503", "488608", "131435", "670352", "939605"}
	for c, w := range want {
		got, err := h.ComputeFor(a, uint64(c))
		require.NoError(t, err)
		assert.Equalf(t, w, got, "counter %d", c)
	}
}

func TestHOTP_ComputeFor_WrongType(t *testing.T) {
	_, err := NewHOTP().ComputeFor(models.NewTOTPAccount(hotpSecret, models.EncodingCompat), 0)
	require.ErrorIs(t, err, ErrWrongOTPType)
}

func TestHOTP_Generate_AdvancesByOne(t *testing.T) {
	h := NewHOTP()

	code, next, err := h.Generate(hotpAccount(4))
	require.NoError(t, err)
	assert.Equal(t, "418804", code)
	assert.Equal(t, uint64(5), next)

	// nil counter reads as zero
	code, next, err = h.Generate(models.Account{Key: hotpSecret, Type: models.OTPTypeHOTP})
	require.NoError(t, err)
	assert.Equal(t, "852775", code)
	assert.Equal(t, uint64(1), next)
}

func TestHOTP_Validate_Window(t *testing.T) {
	h := NewHOTP()

	tests := []struct {
		name        string
		counter     uint64
		candidate   string
		wantCounter uint64
		wantErr     error
	}{
		{"current counter", 0, "852775", 1, nil},
		{"nine ahead", 0, "677964", 10, nil},
		{"ten ahead is outside", 0, "574075", 0, ErrInvalidCode},
		{"from middle", 10, "010753", 16, nil},
		{"behind counter", 5, "418804", 0, ErrInvalidCode},
		{"garbage", 0, "abcdef", 0, ErrInvalidCode},
		{"short", 0, "10753", 0, ErrInvalidCode},
		{"too long", 0, "8527750", 0, ErrInvalidCode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, code, err := h.Validate(hotpAccount(tc.counter), tc.candidate)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCounter, got)
			assert.Equal(t, tc.candidate, code)
		})
	}
}

func TestHOTP_Validate_ReplayRejectedAfterAdvance(t *testing.T) {
	h := NewHOTP()

	next, _, err := h.Validate(hotpAccount(0), "206217")
	require.NoError(t, err)
	require.Equal(t, uint64(3), next)

	for _, old := range []string{"852775", "551063", "206217"} {
		_, _, err := h.Validate(hotpAccount(next), old)
		require.ErrorIs(t, err, ErrInvalidCode, old)
	}
}

func TestHOTP_Validate_StopsAtCounterLimit(t *testing.T) {
	h := NewHOTP()
	top, err := h.Compute(hotpSecret, math.MaxUint32)
	require.NoError(t, err)

	next, code, err := h.Validate(hotpAccount(math.MaxUint32-2), top)
	require.NoError(t, err)
	assert.Equal(t, top, code)
	assert.Equal(t, uint64(math.MaxUint32)+1, next)

	_, _, err = h.Validate(hotpAccount(math.MaxUint32+1), top)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestHOTP_Validate_WrongType(t *testing.T) {
	_, _, err := NewHOTP().Validate(models.NewTOTPAccount(hotpSecret, models.EncodingCompat), "852775")
	require.ErrorIs(t, err, ErrWrongOTPType)
}
