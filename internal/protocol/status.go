package protocol

import "fmt"

// Status is the tri-state condition of a room.
type Status int

const (
	StatusUnset Status = iota
	StatusGood
	StatusNotGood
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusNotGood:
		return "not-good"
	default:
		return "unset"
	}
}

// Client vocabulary, as sent by room operators.
const (
	TokenOK    = "OK"
	TokenNOK   = "NOK"
	TokenReset = "RESET"
)

// Display vocabulary, as rendered by dashboards.
const (
	ColorGreen = "green"
	ColorRed   = "red"
	ColorGrey  = "grey"
)

// Vocabulary names the token set used for statuses in outbound messages.
type Vocabulary string

const (
	VocabularyDisplay Vocabulary = "display"
	VocabularyClient  Vocabulary = "client"
)

// ParseVocabulary validates a configured vocabulary name.
func ParseVocabulary(s string) (Vocabulary, error) {
	switch v := Vocabulary(s); v {
	case VocabularyDisplay, VocabularyClient:
		return v, nil
	default:
		return "", fmt.Errorf("unknown wire vocabulary %q (want %q or %q)", s, VocabularyDisplay, VocabularyClient)
	}
}

// Encode renders s in this vocabulary. Unknown vocabularies fall back to display.
func (v Vocabulary) Encode(s Status) string {
	if v == VocabularyClient {
		return EncodeClientStatus(s)
	}
	return EncodeDisplayStatus(s)
}

// Decode maps a token of this vocabulary back to a Status.
// Unrecognized tokens decode to StatusUnset.
func (v Vocabulary) Decode(token string) Status {
	if v == VocabularyClient {
		return DecodeClientStatus(token)
	}
	return DecodeDisplayStatus(token)
}

// DecodeClientStatus maps an operator token to a Status. It never fails:
// anything other than OK or NOK (RESET, OFF, "", garbage) is StatusUnset.
func DecodeClientStatus(token string) Status {
	switch token {
	case TokenOK:
		return StatusGood
	case TokenNOK:
		return StatusNotGood
	default:
		return StatusUnset
	}
}

// EncodeClientStatus is the inverse of DecodeClientStatus.
func EncodeClientStatus(s Status) string {
	switch s {
	case StatusGood:
		return TokenOK
	case StatusNotGood:
		return TokenNOK
	default:
		return TokenReset
	}
}

// DecodeDisplayStatus maps a display color to a Status.
func DecodeDisplayStatus(color string) Status {
	switch color {
	case ColorGreen:
		return StatusGood
	case ColorRed:
		return StatusNotGood
	default:
		return StatusUnset
	}
}

// EncodeDisplayStatus renders s as a display color.
func EncodeDisplayStatus(s Status) string {
	switch s {
	case StatusGood:
		return ColorGreen
	case StatusNotGood:
		return ColorRed
	default:
		return ColorGrey
	}
}
