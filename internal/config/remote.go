package config

import (
	"encoding/json"
	"fmt"
)

// decodeRemote decodes the JSON document fetched from the remote key-value
// store into the shared layer shape. An empty document is a valid empty
// layer. Unrecognized keys are ignored, matching the treatment of
// unrecognized environment variables.
func decodeRemote(data []byte) (*sections, error) {
	var cfg sections
	if len(data) == 0 {
		return &cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding remote document: %w", err)
	}

	return &cfg, nil
}
