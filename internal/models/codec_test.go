package models

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalAccounts_RoundTrip(t *testing.T) {
	in := map[string]Account{
		"github": NewHOTPAccount("N5WUS53LQBPNVSEE6CH5WHATMVAONRMJ", EncodingCompat).WithCounter(3),
		"aws":    NewTOTPAccount("BS5LINH6DJQY2Z4KEXCSUUBA5DXMVMXCXIDBSB2VSR42VJZBUMLQ", EncodingCompat),
		"google": NewTOTPAccount("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", EncodingRFC),
	}

	data, err := MarshalAccounts(in)
	require.NoError(t, err)

	out, err := UnmarshalAccounts(data)
	require.NoError(t, err)

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalAccounts_Canonical(t *testing.T) {
	in := map[string]Account{
		"zeta":  NewTOTPAccount("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", EncodingCompat),
		"alpha": NewHOTPAccount("N5WUS53LQBPNVSEE6CH5WHATMVAONRMJ", EncodingCompat),
	}

	a, err := MarshalAccounts(in)
	require.NoError(t, err)
	b, err := MarshalAccounts(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	text := string(a)
	assert.Less(t, strings.Index(text, "alpha"), strings.Index(text, "zeta"))
	assert.Regexp(t, `otp_type = ['"]HOTP['"]`, text)
	assert.Contains(t, text, "counter = 0")
	assert.NotContains(t, text, "encoding")
}

func TestMarshalAccounts_TOTPDropsCounter(t *testing.T) {
	c := uint64(9)
	in := map[string]Account{"x": {Key: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", Type: OTPTypeTOTP, Counter: &c}}

	data, err := MarshalAccounts(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "counter")
}

func TestUnmarshalAccounts_FirstFormat(t *testing.T) {
	data := []byte(`
[github]
key = "N5WUS53LQBPNVSEE6CH5WHATMVAONRMJ"
counter = 12
`)
	out, err := UnmarshalAccounts(data)
	require.NoError(t, err)

	a := out["github"]
	assert.Equal(t, OTPTypeHOTP, a.Type)
	assert.Equal(t, uint64(12), a.CounterValue())
	assert.Equal(t, EncodingCompat, a.Encoding)
}

func TestUnmarshalAccounts_Empty(t *testing.T) {
	out, err := UnmarshalAccounts(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnmarshalAccounts_Errors(t *testing.T) {
	tests := map[string]string{
		"not toml":         "this is = = not toml",
		"bad type":         "[a]\nkey = \"X\"\notp_type = \"SMS\"\n",
		"bad encoding":     "[a]\nkey = \"X\"\nencoding = \"base64\"\n",
		"negative counter": "[a]\nkey = \"X\"\ncounter = -1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalAccounts([]byte(in))
			require.Error(t, err)
		})
	}
}
