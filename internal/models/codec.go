package models

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// accountRecord is the TOML shape of one account table:
//
//	[github]
//	key = "N5WUS53LQBPNVSEE6CH5WHATMVAONRMJ"
//	otp_type = "HOTP"
//	counter = 3
type accountRecord struct {
	Key      string   `toml:"key"`
	OTPType  OTPType  `toml:"otp_type,omitempty"`
	Counter  *uint64  `toml:"counter,omitempty"`
	Encoding Encoding `toml:"encoding,omitempty"`
}

// MarshalAccounts renders accounts as TOML, one table per account, ordered
// by name.
func MarshalAccounts(accounts map[string]Account) ([]byte, error) {
	recs := make(map[string]accountRecord, len(accounts))
	for name, a := range accounts {
		rec := accountRecord{Key: a.Key, OTPType: a.Type, Encoding: a.Encoding}
		if a.Type == OTPTypeHOTP {
			c := a.CounterValue()
			rec.Counter = &c
		}
		recs[name] = rec
	}

	b, err := toml.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal accounts: %w", err)
	}
	return b, nil
}

// UnmarshalAccounts parses the output of MarshalAccounts. Tables without an
// otp_type are read as HOTP, which is how the first file format stored every
// account.
func UnmarshalAccounts(data []byte) (map[string]Account, error) {
	accounts := make(map[string]Account)
	if len(data) == 0 {
		return accounts, nil
	}

	var recs map[string]accountRecord
	if err := toml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}

	for name, rec := range recs {
		if name == "" {
			return nil, fmt.Errorf("unmarshal accounts: empty account name")
		}
		raw := rec.OTPType
		if raw == "" {
			raw = OTPTypeHOTP
		}
		typ, err := ParseOTPType(string(raw))
		if err != nil {
			return nil, fmt.Errorf("unmarshal account %q: %w", name, err)
		}
		if rec.Encoding != EncodingCompat && rec.Encoding != EncodingRFC {
			return nil, fmt.Errorf("unmarshal account %q: unknown encoding %q", name, rec.Encoding)
		}

		a := Account{Key: rec.Key, Type: typ, Encoding: rec.Encoding}
		if typ == OTPTypeHOTP {
			a.Counter = rec.Counter
		}
		accounts[name] = a
	}
	return accounts, nil
}
