package store

import (
	"github.com/dcz-bft/commitpool/logger"

	"github.com/nutsdb/nutsdb"
)

// NutsDB is the checkpoint backend the demo binary wires into Store: a
// single BTree bucket holding nothing but the tip-height key.
type NutsDB struct {
	db *nutsdb.DB
}

// CheckpointBucket is the one bucket this module's DB ever touches.
const CheckpointBucket = "CommitPoolCheckpoint"

// NewDefaultNutsDB opens (creating if necessary) a nutsdb instance rooted
// at dir, with the checkpoint bucket ready to use.
func NewDefaultNutsDB(dir string) *NutsDB {
	db, err := nutsdb.Open(nutsdb.DefaultOptions, nutsdb.WithDir(dir))
	if err != nil {
		logger.Error.Println(err)
		panic(err)
	}
	if err := db.Update(func(tx *nutsdb.Tx) error {
		return tx.NewBucket(nutsdb.DataStructureBTree, CheckpointBucket)
	}); err != nil {
		logger.Error.Println(err)
		panic(err)
	}
	return &NutsDB{db: db}
}

func (nuts *NutsDB) Get(key []byte) (val []byte, err error) {
	nuts.db.View(func(tx *nutsdb.Tx) error {
		val, err = tx.Get(CheckpointBucket, key)
		return err
	})
	return
}

func (nuts *NutsDB) Put(key, val []byte) error {
	return nuts.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(CheckpointBucket, key, val, 0)
	})
}
