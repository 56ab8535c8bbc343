package breeding

import (
	"fmt"
	"time"

	"strainchain/block"
	"strainchain/ledger"
	"strainchain/utils"
)

// VerificationInfo is the read-only view the presentation layer renders
// in a strain's verification panel. The core formats nothing beyond the
// generation label.
type VerificationInfo struct {
	IsVerified      bool      `json:"is_verified"`
	ShortDigest     string    `json:"short_digest"`
	FullDigest      string    `json:"full_digest"`
	Generation      uint32    `json:"generation"`
	GenerationLabel string    `json:"generation_label"`
	BreedingDate    time.Time `json:"breeding_date"`
	BreederName     string    `json:"breeder_name"`
	StrainName      string    `json:"strain_name"`
	LineageDepth    int       `json:"lineage_depth"`
	HasLineage      bool      `json:"has_lineage"`
}

// GenerationLabel formats a generation the way breeders name filial
// generations: F0 for genesis strains, F1 for their direct offspring.
func GenerationLabel(generation uint32) string {
	return fmt.Sprintf("F%d", generation)
}

// BuildVerificationInfo assembles the view for a strain digest. A
// record verifies if its stored digest reproduces from its fields and,
// for bred records, still clears the ledger's difficulty.
func BuildVerificationInfo(chain *ledger.Ledger, digest string) (*VerificationInfo, error) {
	rec, err := chain.Lookup(digest)
	if err != nil {
		return nil, err
	}

	verified := false
	if rec.IsGenesis() {
		verified = rec.BlockDigest == block.GenesisDigestPrefix+rec.CalculateDigest()
	} else {
		verified = rec.CalculateDigest() == rec.BlockDigest && rec.ValidateProofOfWork(chain.Difficulty())
	}

	depth, err := chain.LineageDepth(rec.OffspringDigest)
	if err != nil {
		return nil, err
	}

	return &VerificationInfo{
		IsVerified:      verified,
		ShortDigest:     utils.ShortenDigest(rec.BlockDigest),
		FullDigest:      rec.BlockDigest,
		Generation:      rec.Generation,
		GenerationLabel: GenerationLabel(rec.Generation),
		BreedingDate:    time.Unix(rec.Timestamp, 0).UTC(),
		BreederName:     rec.BreederSignature,
		StrainName:      rec.StrainName,
		LineageDepth:    depth,
		HasLineage:      !rec.IsGenesis(),
	}, nil
}
