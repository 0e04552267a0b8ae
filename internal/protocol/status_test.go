package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientStatus(t *testing.T) {
	cases := map[string]Status{
		"OK":      StatusGood,
		"NOK":     StatusNotGood,
		"RESET":   StatusUnset,
		"OFF":     StatusUnset,
		"":        StatusUnset,
		"ok":      StatusUnset,
		"garbage": StatusUnset,
	}
	for token, want := range cases {
		assert.Equal(t, want, DecodeClientStatus(token), "token %q", token)
	}
}

func TestClientTokensRoundTrip(t *testing.T) {
	for _, token := range []string{TokenOK, TokenNOK, TokenReset} {
		assert.Equal(t, token, EncodeClientStatus(DecodeClientStatus(token)))
	}
	for _, s := range []Status{StatusUnset, StatusGood, StatusNotGood} {
		assert.Equal(t, s, DecodeClientStatus(EncodeClientStatus(s)))
	}
}

func TestDisplayVocabulary(t *testing.T) {
	assert.Equal(t, ColorGreen, EncodeDisplayStatus(StatusGood))
	assert.Equal(t, ColorRed, EncodeDisplayStatus(StatusNotGood))
	assert.Equal(t, ColorGrey, EncodeDisplayStatus(StatusUnset))

	for _, s := range []Status{StatusUnset, StatusGood, StatusNotGood} {
		assert.Equal(t, s, DecodeDisplayStatus(EncodeDisplayStatus(s)))
	}
	assert.Equal(t, StatusUnset, DecodeDisplayStatus("purple"))
}

func TestVocabularyEncode(t *testing.T) {
	assert.Equal(t, "OK", VocabularyClient.Encode(StatusGood))
	assert.Equal(t, "green", VocabularyDisplay.Encode(StatusGood))
	assert.Equal(t, StatusNotGood, VocabularyClient.Decode("NOK"))
	assert.Equal(t, StatusNotGood, VocabularyDisplay.Decode("red"))
}

func TestParseVocabulary(t *testing.T) {
	v, err := ParseVocabulary("client")
	require.NoError(t, err)
	assert.Equal(t, VocabularyClient, v)

	_, err = ParseVocabulary("colors")
	assert.Error(t, err)
}
