package dbbadger

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// DbManager holds the on-disk stores backing the wallet repositories. Utxos
// and the vault live in separate badger directories so that they can be
// garbage collected independently.
type DbManager struct {
	UtxoStore  *badgerhold.Store
	VaultStore *badgerhold.Store
}

// NewDbManager opens (or creates) the stores under baseDbDir.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	utxoDir := filepath.Join(baseDbDir, "utxos")
	vaultDir := filepath.Join(baseDbDir, "vault")

	utxoDb, err := createDb(utxoDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening utxos db: %w", err)
	}

	vaultDb, err := createDb(vaultDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vault db: %w", err)
	}

	return &DbManager{
		UtxoStore:  utxoDb,
		VaultStore: vaultDb,
	}, nil
}

// Close releases both stores.
func (d *DbManager) Close() error {
	if err := d.UtxoStore.Close(); err != nil {
		return err
	}
	return d.VaultStore.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// JSONEncode is the serializer used for all stored records.
func JSONEncode(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

// JSONDecode is the deserializer used for all stored records.
func JSONDecode(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}
