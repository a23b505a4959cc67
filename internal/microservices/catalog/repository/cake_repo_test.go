package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"cakeshop/internal/microservices/catalog/domain/dao"
)

func TestApplySizeDiffSkipsUnchangedSizes(t *testing.T) {
	existing := []dao.CakeSize{{ID: 4, CakeID: 1, Size: "15cm", Price: 3200, Stock: 2}}
	diff := dao.DiffSizes(existing, []dao.CakeSize{{Size: "15cm", Price: 3200, Stock: 2}})

	// a nil tx would panic on any write
	assert.NoError(t, applySizeDiff(context.Background(), nil, 1, diff))
}
