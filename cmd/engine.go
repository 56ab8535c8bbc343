package cmd

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"strainchain/genotype"
)

// mixEngine is a stand-in trait engine for the CLI: offspring traits
// are the parent averages nudged by a seed-keyed delta. Deterministic,
// so a chain can be replayed genotype-for-genotype from its records.
// Real inheritance math lives upstream and is not this repo's concern.
type mixEngine struct{}

func (mixEngine) Breed(parent1, parent2 *genotype.Genotype, seed uint64) (*genotype.Genotype, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("nil parent genotype")
	}

	keys := map[string]bool{}
	for k := range parent1.Traits {
		keys[k] = true
	}
	for k := range parent2.Traits {
		keys[k] = true
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	traits := make(map[string]float64, len(names))
	for _, k := range names {
		mean := (parent1.Traits[k] + parent2.Traits[k]) / 2
		traits[k] = mean * (1 + mutationDelta(seed, k))
	}

	name := parent1.StrainName + " x " + parent2.StrainName
	return genotype.New(name, traits), nil
}

// mutationDelta maps (seed, trait) to a deterministic delta in
// [-0.05, 0.05).
func mutationDelta(seed uint64, trait string) float64 {
	h := sha256.New()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seed)
	h.Write(buf)
	h.Write([]byte(trait))
	sum := h.Sum(nil)
	raw := binary.BigEndian.Uint16(sum[:2])
	return (float64(raw)/65536 - 0.5) * 0.1
}
