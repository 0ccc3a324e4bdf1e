package minio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/filestore"
)

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{})
	assert.True(t, errs.IsInvalidInput(err))
}
