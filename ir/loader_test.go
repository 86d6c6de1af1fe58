package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/idlecore/ir"
	"github.com/bittoy/idlecore/types"
)

const sampleModule = `{
	"version": "1",
	"module": "sample",
	"components": [
		{"id": 1, "name": "health", "fields": [{"name": "hp", "type": "integer", "default": 100}]}
	],
	"rules": [],
	"functions": [],
	"initial_state": {
		"entities": [
			{"id": 0, "components": {"health": {"hp": 50}}}
		]
	}
}`

func TestLoadWiresStoreFromModule(t *testing.T) {
	loaded, err := ir.Load([]byte(sampleModule), types.NewConfig())
	require.NoError(t, err)
	assert.True(t, loaded.Store.HasEntity(0))
	hp, ok := loaded.Store.GetField(0, "health", "hp")
	require.True(t, ok)
	assert.Equal(t, int64(50), hp)
}

func TestLoadRejectsDuplicateEntityID(t *testing.T) {
	dup := `{
		"version": "1", "module": "dup",
		"components": [{"id": 1, "name": "health", "fields": []}],
		"rules": [], "functions": [],
		"initial_state": {"entities": [{"id": 0, "components": {}}, {"id": 0, "components": {}}]}
	}`
	_, err := ir.Load([]byte(dup), types.NewConfig())
	require.Error(t, err)
	var loadErr *types.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoadRejectsUnknownComponentReference(t *testing.T) {
	bad := `{
		"version": "1", "module": "bad",
		"components": [],
		"rules": [], "functions": [],
		"initial_state": {"entities": [{"id": 0, "components": {"ghost": {}}}]}
	}`
	_, err := ir.Load([]byte(bad), types.NewConfig())
	require.Error(t, err)
}

func TestLoadPreservesUnknownTopLevelKeysInExtra(t *testing.T) {
	withExtra := `{
		"version": "1", "module": "extra",
		"components": [], "rules": [], "functions": [],
		"initial_state": {"entities": []},
		"future_field": {"ok": true}
	}`
	loaded, err := ir.Load([]byte(withExtra), types.NewConfig())
	require.NoError(t, err)
	require.Contains(t, loaded.Module.Extra, "future_field")
}
