package parser

import (
	"fmt"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
)

// repair coerces or drops the fields of a finished bit that cannot be
// represented. It never rejects the bit; each change is recorded as a repair
// notice.
func (s *session) repair(bit *ast.Bit) {
	notice := func(format string, args ...any) {
		s.diags.Warn(bmErrors.CategoryRepair, fmt.Sprintf(format, args...), s.bitSpan, "")
	}

	if bit.BitLevel < MinBitLevel || bit.BitLevel > MaxBitLevel {
		notice("Bit level of %d is out of range. It will be set to %d", bit.BitLevel, MinBitLevel)
		bit.BitLevel = MinBitLevel
	}

	if n := bit.ReasonableNumOfChars; n != nil && *n < 0 {
		notice("'@reasonableNumOfChars' of %d must not be negative. It will be ignored", *n)
		bit.ReasonableNumOfChars = nil
	}
	for i := range bit.Questions {
		if n := bit.Questions[i].ReasonableNumOfChars; n != nil && *n < 0 {
			notice("'@reasonableNumOfChars' of %d on question %d must not be negative. It will be ignored", *n, i)
			bit.Questions[i].ReasonableNumOfChars = nil
		}
	}

	if len(bit.Pairs) > 0 {
		pairs := bit.Pairs[:0]
		for i, p := range bit.Pairs {
			if p.Key == "" && p.KeyAudio == nil && p.KeyImage == nil {
				notice("Pair %d has an empty key. It will be ignored", i)
				continue
			}
			pairs = append(pairs, p)
		}
		bit.Pairs = nilIfEmpty(pairs)
	}

	if len(bit.Quizzes) > 0 {
		quizzes := bit.Quizzes[:0]
		for i, q := range bit.Quizzes {
			if len(q.Choices) == 0 && len(q.Responses) == 0 {
				notice("Quiz %d has no choices or responses. It will be ignored", i)
				continue
			}
			quizzes = append(quizzes, q)
		}
		bit.Quizzes = nilIfEmpty(quizzes)
	}

	if bit.Partner != nil && bit.Partner.Name == "" && bit.Partner.AvatarImage == nil {
		notice("'@partner' has no name. It will be ignored")
		bit.Partner = nil
	}
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
