// Package scoring implements code validation and guess evaluation for the
// digit duel. Both operations are pure: they inspect strings and return
// results without touching any state.
package scoring

import (
	"strings"

	"github.com/playnvp/nvpduel/internal/model"
)

// Score is the evaluation of a guess against a secret
type Score struct {
	// Values counts guess digits that appear anywhere in the secret.
	// With both strings holding four distinct digits this is the size of
	// the digit-set intersection, 0-4.
	Values int

	// Positions counts indices where guess and secret agree; 4 is a win
	Positions int

	// Placed holds the correctly placed digits in index order
	Placed []string
}

// Win reports whether the score represents an exact match
func (s Score) Win() bool {
	return s.Positions == model.CodeLength
}

// ValidateCode checks that a code is exactly four digits, each in 1-9,
// with no repeats. The zero digit is not part of the game's alphabet.
func ValidateCode(code string) error {
	if len(code) != model.CodeLength {
		return model.ErrInvalidCode
	}
	var seen [10]bool
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '1' || c > '9' {
			return model.ErrInvalidCode
		}
		if seen[c-'0'] {
			return model.ErrInvalidCode
		}
		seen[c-'0'] = true
	}
	return nil
}

// Evaluate scores a guess against a secret. Both inputs must already be
// validated with ValidateCode.
func Evaluate(secret, guess string) Score {
	var score Score
	for i := 0; i < len(guess); i++ {
		if strings.IndexByte(secret, guess[i]) >= 0 {
			score.Values++
		}
		if guess[i] == secret[i] {
			score.Positions++
			score.Placed = append(score.Placed, string(guess[i]))
		}
	}
	return score
}
