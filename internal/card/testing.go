package card

// MustParse is Parse for literals known to be valid.
func MustParse(token string) Card {
	c, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return c
}

// MustParseAll parses tokens and panics on an empty one.
func MustParseAll(tokens ...string) []Card {
	cards := make([]Card, len(tokens))
	for i, t := range tokens {
		cards[i] = MustParse(t)
	}
	return cards
}
