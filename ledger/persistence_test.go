package ledger

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strainchain/errors"
	"strainchain/store"
)

func openTestStore(t *testing.T, storeType store.StoreType, dir string) *store.LedgerStore {
	t.Helper()
	s, err := store.CreateStore(&store.StoreConfig{Type: storeType, Directory: dir})
	require.NoError(t, err)
	return s
}

func TestLedgerPersistsAndReloads(t *testing.T) {
	for _, storeType := range []store.StoreType{store.BoltStoreType, store.LevelDBStoreType} {
		t.Run(string(storeType), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "ledger")

			s := openTestStore(t, storeType, dir)
			l := NewLedger(testDifficulty, s, nil)
			og, bd := seedParents(t, l)
			child := minedRecord(t, "Kush Dream", og.OffspringDigest, bd.OffspringDigest, "genome-kd", "b", l.TailDigest(), 1)
			require.NoError(t, l.AppendBlock(child))
			tail := l.TailDigest()
			require.NoError(t, s.Close())

			reopened := openTestStore(t, storeType, dir)
			defer reopened.Close()

			loaded, err := LoadLedger(testDifficulty, reopened, nil)
			require.NoError(t, err)
			assert.Equal(t, 3, loaded.Length())
			assert.Equal(t, tail, loaded.TailDigest())
			assert.True(t, loaded.ValidateChain())

			path, err := loaded.Lineage("genome-kd")
			require.NoError(t, err)
			assert.Len(t, path, 3)
		})
	}
}

func TestLoadLedgerRefusesTamperedChain(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")

	s := openTestStore(t, store.BoltStoreType, dir)
	l := NewLedger(testDifficulty, s, nil)
	og, bd := seedParents(t, l)
	child := minedRecord(t, "Kush Dream", og.OffspringDigest, bd.OffspringDigest, "genome-kd", "b", l.TailDigest(), 1)
	require.NoError(t, l.AppendBlock(child))
	require.NoError(t, s.Close())

	// Rewrite the stored child with a doctored strain name.
	tampered := openTestStore(t, store.BoltStoreType, dir)
	rec, err := tampered.Record(2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	rec.StrainName = "Forged Dream"
	require.NoError(t, tampered.PutRecord(2, rec))
	require.NoError(t, tampered.Close())

	reopened := openTestStore(t, store.BoltStoreType, dir)
	defer reopened.Close()

	_, err = LoadLedger(testDifficulty, reopened, nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrChainIntegrity))
}
