package breeding

import "strainchain/genotype"

// TraitEngine is the upstream collaborator that owns inheritance math.
// Given two parent genotypes and a mutation seed it deterministically
// produces the offspring genotype; the ledger consumes only the result
// and its digest.
type TraitEngine interface {
	Breed(parent1, parent2 *genotype.Genotype, seed uint64) (*genotype.Genotype, error)
}
