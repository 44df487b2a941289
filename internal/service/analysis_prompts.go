package service

import "fmt"

const (
	utteranceSystemPrompt    = "You are a sales conversation analyst. Always respond with valid JSON only, no markdown or explanations."
	conversationSystemPrompt = "You are an expert sales conversation analyst. Always respond with valid JSON only, no markdown or explanations."
)

func buildUtterancePrompt(customerText string) string {
	return fmt.Sprintf(`Analyze the customer's message:
%q

Return strict JSON only:
{
  "sentiment": "positive" | "neutral" | "negative",
  "confidence": 0..1,
  "key_points": ["point1", "point2"],
  "recommendation_to_salesperson": "short advice"
}`, customerText)
}

func buildConversationPrompt(conversationText string) string {
	return fmt.Sprintf(`Analyze this complete sales conversation about AI/ML educational courses:

CONVERSATION:
%s

Provide a comprehensive analysis in ONLY valid JSON format (no markdown, no code blocks):

{
  "sentiment": "positive" OR "neutral" OR "negative",
  "confidence": 0.0 to 1.0,
  "key_points": ["point1", "point2", "point3"],
  "customer_interests": ["interest1", "interest2"],
  "customer_concerns": ["concern1", "concern2"],
  "recommendation_to_salesperson": "clear actionable recommendation"
}

Analysis Guidelines:
- sentiment: "positive" if customer is interested/engaged, "negative" if explicitly rejecting/upset, "neutral" if undecided
- confidence: 0.8+ for clear sentiment, 0.5-0.7 for mixed signals
- key_points: 3-5 most important things from the ENTIRE conversation
- customer_interests: what did the customer ask about or show interest in?
- customer_concerns: what objections or hesitations did they express?
- recommendation: ONE specific action the salesperson should take next

IMPORTANT: Always provide at least 3 key points based on the conversation content.`, conversationText)
}
