// Package data ships the fallback event dataset used when no seed file
// is configured.
package data

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/formansean/ufo-timline/internal/model"
)

//go:embed events.json
var raw []byte

// Events decodes the embedded dataset. Each call returns a fresh slice.
func Events() ([]model.Event, error) {
	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, errors.Wrap(err, "decode embedded dataset")
	}
	return events, nil
}
