package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/otpkeeper/internal/models"
)

const envelopeVersion = 1

// ErrUnsupportedVersion is returned for an envelope written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported store version")

type envelope struct {
	Version int            `json:"version"`
	Secrets models.Secrets `json:"secrets"`
	Blob    []byte         `json:"blob,omitempty"`
}

func encodeState(s *models.State) ([]byte, error) {
	if s == nil {
		s = &models.State{}
	}
	data, err := json.MarshalIndent(envelope{
		Version: envelopeVersion,
		Secrets: s.Secrets,
		Blob:    s.Blob,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode store: %w", err)
	}
	return data, nil
}

// decodeState parses an envelope. Empty input is an empty state.
func decodeState(data []byte) (*models.State, error) {
	if len(data) == 0 {
		return &models.State{}, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	if env.Version > envelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return &models.State{Blob: env.Blob, Secrets: env.Secrets}, nil
}
