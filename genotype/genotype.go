package genotype

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
)

// Genotype is the complete set of heritable trait values for a strain.
// It is produced by the trait engine and never mutated afterwards; the
// ledger refers to it only through its digest.
type Genotype struct {
	StrainName string
	Traits     map[string]float64
}

// New copies the trait map so later writes by the caller cannot leak into
// the stored genotype.
func New(strainName string, traits map[string]float64) *Genotype {
	copied := make(map[string]float64, len(traits))
	for k, v := range traits {
		copied[k] = v
	}
	return &Genotype{StrainName: strainName, Traits: copied}
}

// ComputeGenomeDigest hashes the canonical encoding of a genotype: strain
// name, then trait entries in sorted key order, values as raw float64 bits.
// Identical genotypes always produce identical digests.
func ComputeGenomeDigest(g *Genotype) string {
	h := sha256.New()
	buf := make([]byte, 8)

	binary.BigEndian.PutUint64(buf, uint64(len(g.StrainName)))
	h.Write(buf)
	h.Write([]byte(g.StrainName))

	keys := make([]string, 0, len(g.Traits))
	for k := range g.Traits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		binary.BigEndian.PutUint64(buf, uint64(len(k)))
		h.Write(buf)
		h.Write([]byte(k))
		binary.BigEndian.PutUint64(buf, math.Float64bits(g.Traits[k]))
		h.Write(buf)
	}

	return hex.EncodeToString(h.Sum(nil))
}
