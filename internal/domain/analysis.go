package domain

// Sentimientos posibles del análisis.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Analysis es el veredicto de sentimiento producido por el LLM,
// ya sea para una frase suelta o para la conversación completa.
type Analysis struct {
	Sentiment      string   `json:"sentiment"`
	Confidence     float64  `json:"confidence"`
	KeyPoints      []string `json:"key_points"`
	Recommendation string   `json:"recommendation_to_salesperson"`
}
