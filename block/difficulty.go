package block

import "github.com/holiman/uint256"

// MeetsDifficulty checks the leading-zero-nibble predicate over a raw
// digest. difficulty is the number of zero nibbles required; 0 admits
// any digest, 64 admits only the all-zero digest.
func MeetsDifficulty(digest [32]byte, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > 64 {
		return false
	}

	fullBytes := difficulty / 2
	for i := 0; i < fullBytes; i++ {
		if digest[i] != 0 {
			return false
		}
	}
	if difficulty%2 == 1 && digest[fullBytes]&0xF0 != 0 {
		return false
	}
	return true
}

// DifficultyTarget converts a nibble count into the equivalent numeric
// target: a digest meets the difficulty iff its 256-bit value is below
// 1 << (256 - 4*difficulty). The batched backend compares against the
// target instead of re-scanning nibbles.
func DifficultyTarget(difficulty int) *uint256.Int {
	if difficulty <= 0 {
		// Unreachable maximum: every digest is strictly below 2^256.
		return new(uint256.Int).Not(uint256.NewInt(0))
	}
	if difficulty >= 64 {
		return uint256.NewInt(1)
	}
	target := uint256.NewInt(1)
	return target.Lsh(target, uint(256-4*difficulty))
}

// MeetsTarget is the numeric form of MeetsDifficulty.
func MeetsTarget(digest [32]byte, target *uint256.Int) bool {
	value := new(uint256.Int).SetBytes32(digest[:])
	return value.Lt(target)
}
