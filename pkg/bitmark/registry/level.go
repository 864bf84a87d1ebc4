package registry

import "fmt"

// Level is the content level a token list is validated and reduced at. It
// selects the legal tag set and changes how some tags are folded.
type Level int

const (
	LevelBit Level = iota
	LevelGapChain
	LevelTrueFalseChain
	LevelMarkChain
	LevelBookChain
	LevelPartnerChain
	LevelResourceChain
	LevelPropertyChain
	LevelCardElement
	LevelCardStatements
	LevelCardQuiz
	LevelCardQuestion
	LevelCardMatch
	LevelCardMatrix
	LevelCardBotResponse
	LevelCardFlashcard
)

var levelNames = map[Level]string{
	LevelBit:             "bit",
	LevelGapChain:        "gapChain",
	LevelTrueFalseChain:  "trueFalseChain",
	LevelMarkChain:       "markChain",
	LevelBookChain:       "bookChain",
	LevelPartnerChain:    "partnerChain",
	LevelResourceChain:   "resourceChain",
	LevelPropertyChain:   "propertyChain",
	LevelCardElement:     "cardElement",
	LevelCardStatements:  "cardStatements",
	LevelCardQuiz:        "cardQuiz",
	LevelCardQuestion:    "cardQuestion",
	LevelCardMatch:       "cardMatch",
	LevelCardMatrix:      "cardMatrix",
	LevelCardBotResponse: "cardBotResponse",
	LevelCardFlashcard:   "cardFlashcard",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// InChain reports whether l is the level of a tag chain.
func (l Level) InChain() bool {
	return l >= LevelGapChain && l <= LevelPropertyChain
}

// InCard reports whether l is the level of a card-set cell.
func (l Level) InCard() bool {
	return l >= LevelCardElement && l <= LevelCardFlashcard
}

// ChainLevel returns the level the chain headed by a tag with the given key
// is reduced at.
func ChainLevel(tagKey string) Level {
	switch tagKey {
	case "gap":
		return LevelGapChain
	case "true", "false":
		return LevelTrueFalseChain
	case "mark":
		return LevelMarkChain
	case "@book":
		return LevelBookChain
	case "@partner":
		return LevelPartnerChain
	}
	if len(tagKey) > 0 && tagKey[0] == '&' {
		return LevelResourceChain
	}
	return LevelPropertyChain
}
