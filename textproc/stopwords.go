package textproc

// Stop words dropped during normalization when remove_stopwords is set.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "or": true,
	"in": true, "that": true, "have": true, "has": true, "it": true, "its": true,
	"for": true, "not": true, "on": true, "with": true, "as": true, "you": true,
	"do": true, "at": true, "this": true, "these": true, "but": true, "by": true,
	"from": true, "we": true, "will": true, "our": true, "can": true, "which": true,
	"their": true, "been": true, "also": true, "such": true, "may": true,
	"into": true, "through": true, "during": true, "between": true, "both": true,
	"using": true, "based": true,
}
