package cache

import (
	"github.com/scalalang2/golang-fifo/s3fifo"
	"github.com/scalalang2/golang-fifo/sieve"
)

// fifoQueue is the method set shared by golang-fifo's SIEVE and S3-FIFO.
type fifoQueue interface {
	Get(key uint64) (uint64, bool)
	Set(key, value uint64)
	Len() int
}

// fifoCache adapts either golang-fifo policy. Entries never expire (ttl 0).
type fifoCache struct {
	q    fifoQueue
	name string
}

// NewSieve creates a SIEVE cache: a FIFO queue with a visited bit and a
// moving hand, so hits cost no list reordering.
func NewSieve(capacity int) (Cache, error) {
	if err := minCapacity("sieve", capacity, 1); err != nil {
		return nil, err
	}
	return &fifoCache{q: sieve.New[uint64, uint64](capacity, 0), name: "sieve"}, nil
}

// NewS3FIFO creates an S3-FIFO cache with small, main and ghost queues.
func NewS3FIFO(capacity int) (Cache, error) {
	if err := minCapacity("s3-fifo", capacity, 1); err != nil {
		return nil, err
	}
	return &fifoCache{q: s3fifo.New[uint64, uint64](capacity, 0), name: "s3-fifo"}, nil
}

func (c *fifoCache) Get(key uint64) (uint64, bool) {
	return c.q.Get(key)
}

func (c *fifoCache) Set(key, value uint64) {
	c.q.Set(key, value)
}

func (c *fifoCache) Len() int {
	return c.q.Len()
}

func (c *fifoCache) Name() string {
	return c.name
}

func (*fifoCache) Close() {}
