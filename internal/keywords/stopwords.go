package keywords

var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "around", "as", "at", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "could", "did", "do", "does", "doing", "down", "during", "each",
	"few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "however", "i", "if", "in", "into", "is", "it",
	"its", "itself", "just", "last", "like", "made", "make", "many", "may", "me", "might", "more",
	"most", "much", "must", "my", "myself", "new", "no", "nor", "not", "now", "of", "off", "on",
	"once", "one", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "per",
	"said", "same", "says", "she", "should", "since", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "two", "under", "until", "up", "us", "very", "was", "we", "were",
	"what", "when", "where", "which", "while", "who", "whom", "why", "will", "with", "within",
	"without", "would", "year", "years", "yet", "you", "your", "yours", "yourself", "yourselves",
	"according", "across", "already", "among", "another", "back", "even", "first",
	"get", "got", "including", "know", "later", "least", "less", "let", "next", "often",
	"part", "put", "rather", "really", "say", "see", "still", "take", "three", "today", "told",
	"toward", "upon", "use", "used", "using", "via", "want", "way", "week", "well", "whether",
}
