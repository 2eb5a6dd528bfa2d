package features

// stopWords is the fixed stop-word list removed from tokenized descriptions
// before stemming. Localized to the transaction language (English).
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "co": {},
	"corp": {}, "for": {}, "from": {}, "in": {}, "inc": {}, "llc": {},
	"ltd": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"via": {}, "with": {},
}

func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
