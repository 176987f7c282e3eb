package rand

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
)

const (
	bytesInUint64 = 8
	charset       = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var charsetLen = len(charset)

var defaultSource = newSource()

func newSource() *source {
	seed := make([]byte, bytesInUint64*2)

	if _, err := cryptorand.Read(seed); err != nil {
		panic("unreachable")
	}

	return &source{
		//nolint:gosec // ids only need to be unique within a document
		rng: rand.New(rand.NewPCG(
			binary.LittleEndian.Uint64(seed[:8]),
			binary.LittleEndian.Uint64(seed[8:]),
		)),
		scratch: make([]byte, bytesInUint64),
	}
}

type source struct {
	mut     sync.Mutex
	rng     *rand.Rand
	scratch []byte
}

// read fills bytes entirely with random bytes.
func (s *source) read(bytes []byte) {
	numBytes := len(bytes)
	numUint64s := numBytes / bytesInUint64
	remaining := numBytes % bytesInUint64

	s.mut.Lock()
	defer s.mut.Unlock()

	for i := range numUint64s {
		from := i * bytesInUint64
		binary.LittleEndian.PutUint64(bytes[from:from+bytesInUint64], s.rng.Uint64())
	}

	if remaining > 0 {
		binary.LittleEndian.PutUint64(s.scratch, s.rng.Uint64())
		copy(bytes[numUint64s*bytesInUint64:], s.scratch[:remaining])
	}
}

// String returns a base62 string of the given length.
// The distribution is not perfectly uniform, which is fine for ids.
func String(length int) string {
	buf := make([]byte, length)
	defaultSource.read(buf)

	for i, b := range buf {
		buf[i] = charset[int(b)%charsetLen]
	}

	return string(buf)
}

// NewRequestID returns an id correlating a remote request with its reply.
func NewRequestID() string {
	return String(constants.RequestIDLength)
}

// NewBlockID returns an id for a new block or text.
func NewBlockID() string {
	return String(constants.BlockIDLength)
}
