package storage

// Analyzer and normalizer names used by the article index.
const (
	AnalyzerName   = "business_india_analyzer"
	NormalizerName = "lowercase_normalizer"
)

// Synonyms expands regional and business vocabulary at index and query time.
var Synonyms = []string{
	"india, indian, bharat, desi, hindustani",
	"business, industry, commerce, trade, corporate, enterprise",
	"msme, micro small medium enterprise, small business",
	"startup, new business, venture",
	"make in india, manufactured in india, indian manufacturing",
	"digital india, digitalization india, india tech",
	"gst, goods and services tax",
	"rbi, reserve bank of india",
	"sebi, securities and exchange board of india",
	"economy, economic, financial, fiscal",
	"khadi, khaddar, handspun cloth",
}

// IndexMapping returns the settings and mappings of the article index.
func IndexMapping(shards, replicas int) map[string]any {
	text := map[string]any{"type": "text", "analyzer": AnalyzerName}
	keyword := map[string]any{"type": "keyword"}
	date := map[string]any{"type": "date"}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
			"analysis": map[string]any{
				"filter": map[string]any{
					"india_business_synonym_filter": map[string]any{
						"type":     "synonym",
						"synonyms": Synonyms,
					},
					"english_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_english_",
					},
					"english_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "english",
					},
				},
				"analyzer": map[string]any{
					AnalyzerName: map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter": []string{
							"lowercase",
							"india_business_synonym_filter",
							"english_stop",
							"english_stemmer",
						},
					},
				},
				"normalizer": map[string]any{
					NormalizerName: map[string]any{
						"type":   "custom",
						"filter": []string{"lowercase"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":             keyword,
				"title":          text,
				"content":        text,
				"summary":        text,
				"author":         keyword,
				"source":         keyword,
				"published_date": date,
				"categories":     keyword,
				"tags":           keyword,
				"url":            keyword,
				"normalized_url": map[string]any{
					"type":       "keyword",
					"normalizer": NormalizerName,
				},
				"created_at": date,
				"updated_at": date,
			},
		},
	}
}
