// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package store persists BookHub's domain records in an embedded Badger
// database. Records are stored as JSON under typed key prefixes; numeric IDs
// come from Badger sequences and start at 1.
//
// Key layout:
//
//	user:<id>               -> models.User
//	user_email:<email>      -> user ID (unique index)
//	genre:<id>              -> models.Genre
//	book:<id>               -> models.Book
//	rating:<id>             -> models.BookRating
//	rating_ub:<user>:<book> -> rating ID (unique index)
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/alezhuq/hub-back/internal/config"
	"github.com/alezhuq/hub-back/internal/logging"
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound       = errors.New("record not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrGenreNameTaken = errors.New("genre name already exists")
	ErrRatingExists   = errors.New("rating already exists for this book")
)

// Key prefixes. Numeric IDs are zero-padded so lexicographic iteration
// matches numeric order.
const (
	prefixUser      = "user:"
	prefixUserEmail = "user_email:"
	prefixGenre     = "genre:"
	prefixBook      = "book:"
	prefixRating    = "rating:"
	prefixRatingUB  = "rating_ub:"

	seqBandwidth = 64
)

// Store is the embedded database handle. All methods are safe for
// concurrent use.
type Store struct {
	db *badger.DB

	userSeq   *badger.Sequence
	genreSeq  *badger.Sequence
	bookSeq   *badger.Sequence
	ratingSeq *badger.Sequence

	gcStop chan struct{}
	gcDone chan struct{}
}

// Open opens (or creates) the database described by cfg and starts the
// value log garbage collector for on-disk databases.
func Open(cfg config.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory || cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		gcStop: make(chan struct{}),
		gcDone: make(chan struct{}),
	}

	for _, seq := range []struct {
		key  string
		dest **badger.Sequence
	}{
		{"seq:user", &s.userSeq},
		{"seq:genre", &s.genreSeq},
		{"seq:book", &s.bookSeq},
		{"seq:rating", &s.ratingSeq},
	} {
		sq, err := db.GetSequence([]byte(seq.key), seqBandwidth)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("opening sequence %s: %w", seq.key, err)
		}
		*seq.dest = sq
	}

	if !opts.InMemory {
		interval := cfg.GCInterval
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		go s.runGC(interval)
	} else {
		close(s.gcDone)
	}

	return s, nil
}

// Close releases sequences and closes the database. Safe to call once.
func (s *Store) Close() error {
	close(s.gcStop)
	<-s.gcDone

	for _, seq := range []*badger.Sequence{s.userSeq, s.genreSeq, s.bookSeq, s.ratingSeq} {
		if seq != nil {
			_ = seq.Release()
		}
	}
	return s.db.Close()
}

// runGC periodically reclaims value log space. Badger returns ErrNoRewrite
// when there is nothing to collect, which is not an error condition.
func (s *Store) runGC(interval time.Duration) {
	defer close(s.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.gcStop:
			return
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(0.5)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						logging.Warn().Err(err).Msg("Value log GC failed")
					}
					break
				}
			}
		}
	}
}

// nextID draws the next ID from a sequence. Sequences start at 0, record
// IDs start at 1.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("allocating id: %w", err)
	}
	return int64(n) + 1, nil
}

func recordKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

func ratingUBKey(userID, bookID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", prefixRatingUB, userID, bookID))
}

func encodeID(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}

func decodeID(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}

// setJSON marshals v and stores it under key within txn.
func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return txn.Set(key, data)
}

// getJSON loads key within txn and unmarshals it into v. Missing keys map
// to ErrNotFound.
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// iteratePrefix walks every record under prefix, decoding each value into a
// fresh T and passing it to fn. Returning false from fn stops iteration.
func iteratePrefix[T any](txn *badger.Txn, prefix string, fn func(*T) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var rec T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			return fmt.Errorf("decoding record %s: %w", it.Item().Key(), err)
		}
		if !fn(&rec) {
			return nil
		}
	}
	return nil
}

// ctxErr lets long scans respect request cancellation between transactions.
func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { logging.Error().Msgf("badger: "+f, v...) }
func (badgerLogger) Warningf(f string, v ...any) { logging.Warn().Msgf("badger: "+f, v...) }
func (badgerLogger) Infof(f string, v ...any)    { logging.Debug().Msgf("badger: "+f, v...) }
func (badgerLogger) Debugf(f string, v ...any)   { logging.Debug().Msgf("badger: "+f, v...) }
