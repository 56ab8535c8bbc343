package block

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strings"
)

// GenesisDigestPrefix marks ledger entries created without breeding. A
// genesis record's BlockDigest carries this sentinel in front of its
// computed hash, which is how integrity checks tell them apart from
// mined records.
const GenesisDigestPrefix = "genesis:"

// Record is a single ledger entry: one breeding event, or the
// introduction of a strain without parents (genesis).
type Record struct {
	PacketID            string `json:"packet_id"`            // UUID of the breeding packet
	ParentDigest1       string `json:"parent_digest_1"`      // genome digest of parent 1, empty for genesis
	ParentDigest2       string `json:"parent_digest_2"`      // genome digest of parent 2, empty for genesis
	OffspringDigest     string `json:"offspring_digest"`     // genome digest of the offspring
	MutationSeed        uint64 `json:"mutation_seed"`        // seed handed to the trait engine
	Timestamp           int64  `json:"timestamp"`            // unix seconds at assembly
	BreederSignature    string `json:"breeder_signature"`    // breeder identity string
	PreviousBlockDigest string `json:"previous_block_digest"` // chain link, empty for the first record
	StrainName          string `json:"strain_name"`
	Generation          uint32 `json:"generation"`
	Nonce               uint64 `json:"nonce"`
	BlockDigest         string `json:"block_digest"` // computed, sentinel-prefixed for genesis
}

func writeString(h hash.Hash, buf []byte, s string) {
	binary.BigEndian.PutUint64(buf, uint64(len(s)))
	h.Write(buf)
	h.Write([]byte(s))
}

// DigestBytes hashes the canonical serialization of every field except
// BlockDigest. Strings are length-prefixed so adjacent fields cannot
// bleed into each other.
func (r *Record) DigestBytes() [32]byte {
	h := sha256.New()
	buf := make([]byte, 8)

	writeString(h, buf, r.PacketID)
	writeString(h, buf, r.ParentDigest1)
	writeString(h, buf, r.ParentDigest2)
	writeString(h, buf, r.OffspringDigest)
	binary.BigEndian.PutUint64(buf, r.MutationSeed)
	h.Write(buf)
	binary.BigEndian.PutUint64(buf, uint64(r.Timestamp))
	h.Write(buf)
	writeString(h, buf, r.BreederSignature)
	writeString(h, buf, r.PreviousBlockDigest)
	writeString(h, buf, r.StrainName)
	binary.BigEndian.PutUint64(buf, uint64(r.Generation))
	h.Write(buf)
	binary.BigEndian.PutUint64(buf, r.Nonce)
	h.Write(buf)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CalculateDigest is the hex form of DigestBytes. Pure: identical fields
// always produce the identical digest, in any execution context.
func (r *Record) CalculateDigest() string {
	sum := r.DigestBytes()
	return hex.EncodeToString(sum[:])
}

// SealGenesis stamps the sentinel-prefixed digest onto a genesis record.
// Genesis records never pass through proof-of-work.
func (r *Record) SealGenesis() {
	r.BlockDigest = GenesisDigestPrefix + r.CalculateDigest()
}

// IsGenesis reports whether the record was introduced without parents.
func (r *Record) IsGenesis() bool {
	return r.ParentDigest1 == "" && r.ParentDigest2 == ""
}

// IsGenesisDigest reports whether a block digest carries the genesis sentinel.
func IsGenesisDigest(digest string) bool {
	return strings.HasPrefix(digest, GenesisDigestPrefix)
}

// ValidateProofOfWork reports whether the record's current digest has at
// least difficulty leading zero nibbles.
func (r *Record) ValidateProofOfWork(difficulty int) bool {
	sum := r.DigestBytes()
	return MeetsDifficulty(sum, difficulty)
}
