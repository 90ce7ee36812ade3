package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// BadgerCache is a cache implementation using BadgerDB
type BadgerCache struct {
	db        *badger.DB
	directory string
	stop      chan struct{}
	closeOnce sync.Once
}

// NewBadgerCache creates a new BadgerDB cache
func NewBadgerCache(opts Options) (*BadgerCache, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		opts.Directory = ""
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			return nil, fmt.Errorf("cache directory is required")
		}
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c := &BadgerCache{
		db:        db,
		directory: opts.Directory,
		stop:      make(chan struct{}),
	}
	if opts.GCInterval > 0 && !opts.InMemory {
		go c.runGC(opts.GCInterval)
	}
	return c, nil
}

func (c *BadgerCache) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			_ = c.db.RunValueLogGC(0.5)
		}
	}
}

// keyPrefix namespaces gitzip entries so a format change can drop them wholesale.
var keyPrefix = []byte("gz1/")

func dbKey(key string) []byte {
	return append(append(make([]byte, 0, len(keyPrefix)+len(key)), keyPrefix...), key...)
}

// lookup runs fn on the live item for key, or returns domain.ErrCacheMiss.
func (c *BadgerCache) lookup(key string, fn func(*badger.Item) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrCacheMiss
		}
		if err != nil {
			return err
		}
		return fn(item)
	})
}

// Get returns the decoded value stored under key.
func (c *BadgerCache) Get(_ context.Context, key string) (value []byte, err error) {
	err = c.lookup(key, func(item *badger.Item) error {
		stored, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value, err = decompress(stored, item.UserMeta())
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key. A non-positive ttl keeps the entry until cleared.
func (c *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored, meta := compress(value)
	e := badger.NewEntry(dbKey(key), stored).WithMeta(meta)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return c.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) })
}

func (c *BadgerCache) Has(_ context.Context, key string) bool {
	return c.lookup(key, func(*badger.Item) error { return nil }) == nil
}

func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error { return txn.Delete(dbKey(key)) })
}

// Close stops the GC loop and closes the database. Safe to call twice.
func (c *BadgerCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		err = c.db.Close()
	})
	return err
}

// Clear drops every gitzip entry.
func (c *BadgerCache) Clear() error {
	return c.db.DropPrefix(keyPrefix)
}

// Size counts live entries without reading values.
func (c *BadgerCache) Size() int64 {
	var n int64
	_ = c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: keyPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Stats returns cache statistics
func (c *BadgerCache) Stats() Stats {
	lsm, vlog := c.db.Size()
	return Stats{
		Directory: c.directory,
		Entries:   c.Size(),
		LSMSize:   lsm,
		VLogSize:  vlog,
	}
}
