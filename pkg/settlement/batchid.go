package settlement

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// NewBatchID derives a batch identifier from the employer account, the
// submission time, and a random nonce. IDs are unique per batch with
// overwhelming probability; consumers must not assume them sequential or
// human-readable.
func NewBatchID(employer common.Address) [32]byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixNano()))

	nonce := uuid.New()

	var out [32]byte
	copy(out[:], crypto.Keccak256(employer.Bytes(), ts[:], nonce[:]))
	return out
}
