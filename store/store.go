// Package store persists the one piece of state a commit pool node
// benefits from remembering across restarts: the chain tip its demo
// block producer last observed. Commits themselves are never persisted
// here — a node always recovers those from its peers (spec §9 Open
// Question) — so this stays a narrow checkpoint, not a general object
// store.
package store

import "encoding/binary"

// DB is the minimal key-value contract a persistence backend must
// satisfy. NutsDB below is the only implementation this module ships.
type DB interface {
	Put(key []byte, val []byte) error
	Get(key []byte) ([]byte, error)
}

var tipHeightKey = []byte("commitpool:tip-height")

const (
	opRead = iota
	opWrite
)

type storeReq struct {
	typ  int
	key  []byte
	val  []byte
	err  error
	Done chan *storeReq
}

func (r *storeReq) done() {
	r.Done <- r
}

// Store serialises access to a DB through a single goroutine, so the
// block producer's checkpoint write can never race a concurrent read of
// it.
type Store struct {
	db    DB
	reqCh chan *storeReq
}

// NewStore wraps a DB with the serialising request goroutine.
func NewStore(db DB) *Store {
	s := &Store{
		db:    db,
		reqCh: make(chan *storeReq, 1000),
	}
	go s.serve()
	return s
}

func (s *Store) serve() {
	for req := range s.reqCh {
		switch req.typ {
		case opRead:
			req.val, req.err = s.db.Get(req.key)
		case opWrite:
			req.err = s.db.Put(req.key, req.val)
		}
		req.done()
	}
}

func (s *Store) read(key []byte) ([]byte, error) {
	req := &storeReq{typ: opRead, key: key, Done: make(chan *storeReq, 1)}
	s.reqCh <- req
	<-req.Done
	return req.val, req.err
}

func (s *Store) write(key, val []byte) error {
	req := &storeReq{typ: opWrite, key: key, val: val, Done: make(chan *storeReq, 1)}
	s.reqCh <- req
	<-req.Done
	return req.err
}

// SaveTipHeight records the height of the most recently observed block,
// so a restarted node can log where it left off.
func (s *Store) SaveTipHeight(height uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], height)
	return s.write(tipHeightKey, buf[:])
}

// LoadTipHeight returns the height SaveTipHeight last recorded. ok is
// false if the backend has no prior checkpoint or it could not be read,
// in which case height is meaningless and the node should start fresh.
func (s *Store) LoadTipHeight() (height uint32, ok bool) {
	val, err := s.read(tipHeightKey)
	if err != nil || len(val) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(val), true
}
