package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig("localhost:9000", "ak", "sk").Validate())
	assert.NoError(t, (&Config{Endpoint: "localhost:9000"}).Validate())

	assert.ErrorContains(t, DefaultConfig("", "ak", "sk").Validate(), "endpoint")
	assert.ErrorContains(t, (&Config{Provider: "gcs", Endpoint: "x"}).Validate(), "gcs")
}
