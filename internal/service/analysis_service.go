package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/llm"
)

// Límite de contexto enviado al LLM para análisis de conversación completa.
// Se recorta por el inicio: el estado actual del trato pesa más que los saludos.
const maxConversationChars = 3000

// AnalysisService usa el LLM para puntuar sentimiento de frases sueltas
// y de conversaciones completas. Nunca devuelve error: toda falla del LLM
// o del parseo degrada a un análisis de respaldo documentado.
type AnalysisService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewAnalysisService(llmClient llm.LLMClient, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		llmClient: llmClient,
		logger:    logger,
	}
}

// llmAnalysisPayload es la salida JSON esperada del modelo.
type llmAnalysisPayload struct {
	Sentiment         string   `json:"sentiment"`
	Confidence        *float64 `json:"confidence"`
	KeyPoints         []string `json:"key_points"`
	CustomerInterests []string `json:"customer_interests"`
	CustomerConcerns  []string `json:"customer_concerns"`
	Recommendation    string   `json:"recommendation_to_salesperson"`
}

// AnalyzeUtterance puntúa una sola frase del cliente. Cualquier falla
// (llamada o parseo) devuelve el respaldo neutral fijo.
func (s *AnalysisService) AnalyzeUtterance(ctx context.Context, customerText string) domain.Analysis {
	fallback := domain.Analysis{
		Sentiment:      domain.SentimentNeutral,
		Confidence:     0.0,
		KeyPoints:      []string{},
		Recommendation: "Unable to analyze.",
	}

	raw, err := s.llmClient.Generate(ctx, utteranceSystemPrompt, buildUtterancePrompt(customerText), 500)
	if err != nil {
		s.logger.Warn("utterance analysis call failed", zap.Error(err))
		return fallback
	}

	parsed, err := parseAnalysisPayload(raw)
	if err != nil {
		s.logger.Warn("utterance analysis parse failed", zap.Error(err))
		return fallback
	}

	confidence := 0.0
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	keyPoints := parsed.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	return domain.Analysis{
		Sentiment:      normalizeSentiment(parsed.Sentiment),
		Confidence:     confidence,
		KeyPoints:      keyPoints,
		Recommendation: defaultString(parsed.Recommendation, "Continue the conversation normally."),
	}
}

// AnalyzeConversation puntúa la conversación completa de una sala.
// Con buffer vacío devuelve un placeholder sin llamar al modelo; una falla
// de llamada o de parseo degrada a un respaldo derivado de los textos crudos
// del cliente, que sigue siendo más útil que el respaldo genérico por frase.
func (s *AnalysisService) AnalyzeConversation(ctx context.Context, messages []domain.Message) domain.Analysis {
	if len(messages) == 0 {
		return domain.Analysis{
			Sentiment:      domain.SentimentNeutral,
			Confidence:     0.5,
			KeyPoints:      []string{"No conversation data"},
			Recommendation: "No messages to analyze.",
		}
	}

	transcript := renderTranscript(messages)
	s.logger.Info("conversation analysis", zap.Int("transcript_chars", len(transcript)), zap.Int("messages", len(messages)))

	raw, err := s.llmClient.Generate(ctx, conversationSystemPrompt, buildConversationPrompt(transcript), 1000)
	if err != nil {
		s.logger.Warn("conversation analysis call failed", zap.Error(err))
		return s.callFailureFallback(messages)
	}

	parsed, err := parseAnalysisPayload(raw)
	if err != nil {
		s.logger.Warn("conversation analysis parse failed", zap.Error(err))
		return s.parseFailureFallback(messages)
	}

	keyPoints := make([]string, 0, len(parsed.KeyPoints)+len(parsed.CustomerInterests)+len(parsed.CustomerConcerns))
	keyPoints = append(keyPoints, parsed.KeyPoints...)
	keyPoints = append(keyPoints, parsed.CustomerInterests...)
	keyPoints = append(keyPoints, parsed.CustomerConcerns...)

	if len(keyPoints) == 0 {
		s.logger.Warn("no key points in model output, extracting from messages")
		customer := customerTexts(messages)
		if len(customer) > 0 {
			for _, text := range firstN(customer, 3) {
				keyPoints = append(keyPoints, "Customer message: "+cutRunes(text, 80))
			}
		} else {
			keyPoints = []string{"Conversation completed"}
		}
	}
	keyPoints = firstN(keyPoints, 7)

	confidence := 0.6
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	if confidence < 0.5 {
		confidence = 0.5
	}

	result := domain.Analysis{
		Sentiment:      normalizeSentiment(parsed.Sentiment),
		Confidence:     confidence,
		KeyPoints:      keyPoints,
		Recommendation: defaultString(parsed.Recommendation, "Follow up based on customer interests expressed in the conversation."),
	}
	s.logger.Info("conversation analysis done", zap.String("sentiment", result.Sentiment), zap.Int("key_points", len(result.KeyPoints)))
	return result
}

// parseFailureFallback arma un análisis desde los textos crudos del cliente.
func (s *AnalysisService) parseFailureFallback(messages []domain.Message) domain.Analysis {
	customer := customerTexts(messages)
	keyPoints := []string{"Customer engaged in conversation"}
	if len(customer) > 0 {
		keyPoints = keyPoints[:0]
		for _, text := range firstN(customer, 5) {
			keyPoints = append(keyPoints, cutRunes(text, 100))
		}
	}
	return domain.Analysis{
		Sentiment:      domain.SentimentNeutral,
		Confidence:     0.5,
		KeyPoints:      keyPoints,
		Recommendation: "Review full transcript for context and follow up appropriately.",
	}
}

func (s *AnalysisService) callFailureFallback(messages []domain.Message) domain.Analysis {
	customer := customerTexts(messages)
	return domain.Analysis{
		Sentiment:  domain.SentimentNeutral,
		Confidence: 0.5,
		KeyPoints: []string{
			fmt.Sprintf("Conversation had %d total messages", len(messages)),
			fmt.Sprintf("Customer spoke %d times", len(customer)),
			"See transcript for details",
		},
		Recommendation: "Review the conversation transcript and follow up based on customer's responses.",
	}
}

func parseAnalysisPayload(raw string) (llmAnalysisPayload, error) {
	cleaned := cleanLLMJSONResponse(raw)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		cleaned = obj
	}
	var payload llmAnalysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return llmAnalysisPayload{}, fmt.Errorf("parse llm output: %w", err)
	}
	return payload, nil
}

// renderTranscript arma el texto speaker-tagged, recortado a los últimos
// maxConversationChars caracteres si la conversación es más larga.
func renderTranscript(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := "Agent"
		if msg.Speaker == domain.SpeakerCustomer {
			label = "Customer"
		}
		lines = append(lines, label+": "+msg.Text)
	}
	transcript := strings.Join(lines, "\n")

	runes := []rune(transcript)
	if len(runes) > maxConversationChars {
		transcript = string(runes[len(runes)-maxConversationChars:])
	}
	return transcript
}

func customerTexts(messages []domain.Message) []string {
	var texts []string
	for _, msg := range messages {
		if msg.Speaker == domain.SpeakerCustomer {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.SentimentPositive:
		return domain.SentimentPositive
	case domain.SentimentNegative:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func cutRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
