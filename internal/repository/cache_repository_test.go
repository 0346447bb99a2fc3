package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
)

func TestCacheRepositoryNilClientDegrades(t *testing.T) {
	repo := NewCacheRepository(nil, zap.NewNop())

	var dest []string
	err := repo.Get(context.Background(), "slots:prov-1:w0", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, repo.Set(context.Background(), "slots:prov-1:w0", []string{"x"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "slots:prov-1:*"))
}
