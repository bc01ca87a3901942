package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func TestDefaultTransactionOptions(t *testing.T) {
	opts := DefaultTransactionOptions()

	require.NotNil(t, opts.ReadPreference)
	assert.Equal(t, readpref.PrimaryMode, opts.ReadPreference.Mode())
	require.NotNil(t, opts.ReadConcern)
	assert.Equal(t, "majority", opts.ReadConcern.Level)
	require.NotNil(t, opts.WriteConcern)
	assert.True(t, opts.WriteConcern.Acknowledged())
}
