package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		PacketID:            "7f4df20a-9c71-44a5-90b5-4a4e5f6cfa01",
		ParentDigest1:       "aaaa",
		ParentDigest2:       "bbbb",
		OffspringDigest:     "cccc",
		MutationSeed:        0xDEADBEEF,
		Timestamp:           1700000000,
		BreederSignature:    "breeder-1",
		PreviousBlockDigest: "dddd",
		StrainName:          "Test Strain",
		Generation:          1,
		Nonce:               42,
	}
}

func TestCalculateDigestPure(t *testing.T) {
	rec := sampleRecord()
	first := rec.CalculateDigest()
	require.Len(t, first, 64)

	before := *rec
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rec.CalculateDigest())
	}
	assert.Equal(t, before, *rec, "CalculateDigest must not mutate the record")
}

func TestCalculateDigestSensitiveToEveryField(t *testing.T) {
	base := sampleRecord().CalculateDigest()

	mutations := map[string]func(*Record){
		"packet id":    func(r *Record) { r.PacketID = "x" },
		"parent 1":     func(r *Record) { r.ParentDigest1 = "x" },
		"parent 2":     func(r *Record) { r.ParentDigest2 = "x" },
		"offspring":    func(r *Record) { r.OffspringDigest = "x" },
		"seed":         func(r *Record) { r.MutationSeed++ },
		"timestamp":    func(r *Record) { r.Timestamp++ },
		"breeder":      func(r *Record) { r.BreederSignature = "x" },
		"prev digest":  func(r *Record) { r.PreviousBlockDigest = "x" },
		"strain name":  func(r *Record) { r.StrainName = "x" },
		"generation":   func(r *Record) { r.Generation++ },
		"nonce":        func(r *Record) { r.Nonce++ },
	}
	for name, mutate := range mutations {
		rec := sampleRecord()
		mutate(rec)
		assert.NotEqual(t, base, rec.CalculateDigest(), "mutating %s must change the digest", name)
	}
}

func TestStringFieldsDoNotBleed(t *testing.T) {
	a := sampleRecord()
	a.ParentDigest1 = "ab"
	a.ParentDigest2 = "cd"

	b := sampleRecord()
	b.ParentDigest1 = "abc"
	b.ParentDigest2 = "d"

	assert.NotEqual(t, a.CalculateDigest(), b.CalculateDigest())
}

func TestSealGenesis(t *testing.T) {
	rec := &Record{
		PacketID:        "packet",
		OffspringDigest: "cccc",
		Timestamp:       1700000000,
		StrainName:      "OG Kush",
	}
	rec.SealGenesis()

	require.True(t, rec.IsGenesis())
	assert.True(t, IsGenesisDigest(rec.BlockDigest))
	assert.Equal(t, GenesisDigestPrefix+rec.CalculateDigest(), rec.BlockDigest)
	assert.False(t, IsGenesisDigest(sampleRecord().CalculateDigest()))
}

func TestValidateProofOfWork(t *testing.T) {
	rec := sampleRecord()
	assert.True(t, rec.ValidateProofOfWork(0), "difficulty 0 admits any digest")

	// Search a small nonce window by hand for a difficulty-1 winner.
	found := false
	for nonce := uint64(0); nonce < 1000; nonce++ {
		rec.Nonce = nonce
		if rec.ValidateProofOfWork(1) {
			found = true
			break
		}
	}
	require.True(t, found, "a difficulty-1 nonce should appear within 1000 attempts")
	sum := rec.DigestBytes()
	assert.Equal(t, uint8(0), sum[0]&0xF0)
}
