package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/llm"
)

func TestAnalyzeUtterance_ParsesModelOutput(t *testing.T) {
	mock := &llm.MockClient{Response: `{
		"sentiment": "Positive",
		"confidence": 0.85,
		"key_points": ["asks about pricing"],
		"recommendation_to_salesperson": "Offer the discount."
	}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeUtterance(context.Background(), "I love this course")
	if a.Sentiment != domain.SentimentPositive {
		t.Fatalf("expected positive, got %q", a.Sentiment)
	}
	if a.Confidence != 0.85 {
		t.Fatalf("expected confidence 0.85, got %v", a.Confidence)
	}
	if len(a.KeyPoints) != 1 || a.KeyPoints[0] != "asks about pricing" {
		t.Fatalf("unexpected key points: %+v", a.KeyPoints)
	}
	if a.Recommendation != "Offer the discount." {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
	if !strings.Contains(mock.LastPrompt, "I love this course") {
		t.Fatalf("expected customer text in prompt")
	}
}

func TestAnalyzeUtterance_FallbackOnCallFailure(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("llm down")}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeUtterance(context.Background(), "hola")
	if a.Sentiment != domain.SentimentNeutral || a.Confidence != 0.0 {
		t.Fatalf("expected fixed neutral fallback, got %+v", a)
	}
	if len(a.KeyPoints) != 0 {
		t.Fatalf("expected empty key points, got %+v", a.KeyPoints)
	}
	if a.Recommendation != "Unable to analyze." {
		t.Fatalf("unexpected fallback recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzeUtterance_FallbackOnGarbageOutput(t *testing.T) {
	mock := &llm.MockClient{Response: "sorry, I cannot help with that"}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeUtterance(context.Background(), "hola")
	if a.Sentiment != domain.SentimentNeutral || a.Recommendation != "Unable to analyze." {
		t.Fatalf("expected fixed fallback on parse failure, got %+v", a)
	}
}

func TestAnalyzeUtterance_UnwrapsMarkdownFences(t *testing.T) {
	mock := &llm.MockClient{Response: "```json\n{\"sentiment\": \"negative\", \"confidence\": 0.7, \"key_points\": [], \"recommendation_to_salesperson\": \"Address the objection.\"}\n```"}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeUtterance(context.Background(), "this is too expensive")
	if a.Sentiment != domain.SentimentNegative || a.Confidence != 0.7 {
		t.Fatalf("expected fenced JSON parsed, got %+v", a)
	}
}

func TestAnalyzeUtterance_DefaultsMissingFields(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "weird"}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeUtterance(context.Background(), "hola")
	if a.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected unknown sentiment normalized to neutral, got %q", a.Sentiment)
	}
	if a.Confidence != 0.0 {
		t.Fatalf("expected default confidence 0, got %v", a.Confidence)
	}
	if a.Recommendation != "Continue the conversation normally." {
		t.Fatalf("expected default recommendation, got %q", a.Recommendation)
	}
}

func TestAnalyzeConversation_EmptyInputSkipsModel(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "positive"}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeConversation(context.Background(), nil)
	if mock.Calls != 0 {
		t.Fatalf("expected no llm call for empty conversation")
	}
	if a.Sentiment != domain.SentimentNeutral || a.Confidence != 0.5 {
		t.Fatalf("unexpected placeholder: %+v", a)
	}
	if len(a.KeyPoints) != 1 || a.KeyPoints[0] != "No conversation data" {
		t.Fatalf("unexpected placeholder key points: %+v", a.KeyPoints)
	}
}

func TestAnalyzeConversation_MergesAndCapsKeyPoints(t *testing.T) {
	mock := &llm.MockClient{Response: `{
		"sentiment": "positive",
		"confidence": 0.9,
		"key_points": ["p1", "p2", "p3"],
		"customer_interests": ["i1", "i2", "i3"],
		"customer_concerns": ["c1", "c2"],
		"recommendation_to_salesperson": "Close the deal."
	}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	msgs := []domain.Message{
		{Text: "I love this course", Speaker: domain.SpeakerCustomer},
		{Text: "Great to hear!", Speaker: domain.SpeakerAgent},
	}
	a := svc.AnalyzeConversation(context.Background(), msgs)
	if len(a.KeyPoints) != 7 {
		t.Fatalf("expected key points capped at 7, got %d", len(a.KeyPoints))
	}
	if a.KeyPoints[0] != "p1" || a.KeyPoints[3] != "i1" || a.KeyPoints[6] != "c1" {
		t.Fatalf("expected concat order key_points+interests+concerns, got %+v", a.KeyPoints)
	}
	if a.Confidence < 0.5 {
		t.Fatalf("confidence below floor: %v", a.Confidence)
	}
	if !strings.Contains(mock.LastPrompt, "Customer: I love this course") ||
		!strings.Contains(mock.LastPrompt, "Agent: Great to hear!") {
		t.Fatalf("expected speaker-tagged transcript in prompt:\n%s", mock.LastPrompt)
	}
}

func TestAnalyzeConversation_FloorsConfidence(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "neutral", "confidence": 0.2, "key_points": ["p1"], "recommendation_to_salesperson": "x"}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	a := svc.AnalyzeConversation(context.Background(), []domain.Message{{Text: "hola", Speaker: domain.SpeakerCustomer}})
	if a.Confidence != 0.5 {
		t.Fatalf("expected confidence floored at 0.5, got %v", a.Confidence)
	}
}

func TestAnalyzeConversation_BackfillsKeyPointsFromCustomer(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "positive", "confidence": 0.8, "recommendation_to_salesperson": "x"}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	msgs := []domain.Message{
		{Text: "tell me about the ML track", Speaker: domain.SpeakerCustomer},
		{Text: "sure", Speaker: domain.SpeakerAgent},
	}
	a := svc.AnalyzeConversation(context.Background(), msgs)
	if len(a.KeyPoints) != 1 || a.KeyPoints[0] != "Customer message: tell me about the ML track" {
		t.Fatalf("expected backfill from customer messages, got %+v", a.KeyPoints)
	}
}

func TestAnalyzeConversation_ParseFailureUsesRawCustomerTexts(t *testing.T) {
	mock := &llm.MockClient{Response: "not json at all"}
	svc := NewAnalysisService(mock, zap.NewNop())

	var msgs []domain.Message
	for i := 0; i < 8; i++ {
		msgs = append(msgs, domain.Message{Text: fmt.Sprintf("customer line %d", i), Speaker: domain.SpeakerCustomer})
	}
	a := svc.AnalyzeConversation(context.Background(), msgs)
	if a.Sentiment != domain.SentimentNeutral || a.Confidence != 0.5 {
		t.Fatalf("unexpected fallback analysis: %+v", a)
	}
	if len(a.KeyPoints) != 5 || a.KeyPoints[0] != "customer line 0" {
		t.Fatalf("expected first 5 customer texts, got %+v", a.KeyPoints)
	}
	if a.Recommendation != "Review full transcript for context and follow up appropriately." {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestAnalyzeConversation_CallFailureSummarizesCounts(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("timeout")}
	svc := NewAnalysisService(mock, zap.NewNop())

	msgs := []domain.Message{
		{Text: "hola", Speaker: domain.SpeakerCustomer},
		{Text: "buenas", Speaker: domain.SpeakerAgent},
		{Text: "me interesa", Speaker: domain.SpeakerCustomer},
	}
	a := svc.AnalyzeConversation(context.Background(), msgs)
	if len(a.KeyPoints) != 3 {
		t.Fatalf("expected 3 summary lines, got %+v", a.KeyPoints)
	}
	if a.KeyPoints[0] != "Conversation had 3 total messages" || a.KeyPoints[1] != "Customer spoke 2 times" {
		t.Fatalf("unexpected summary: %+v", a.KeyPoints)
	}
}

func TestAnalyzeConversation_TruncatesLongTranscript(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "neutral", "confidence": 0.6, "key_points": ["p"], "recommendation_to_salesperson": "x"}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	long := strings.Repeat("a", 2000)
	msgs := []domain.Message{
		{Text: long, Speaker: domain.SpeakerCustomer},
		{Text: long, Speaker: domain.SpeakerAgent},
		{Text: "FINAL", Speaker: domain.SpeakerCustomer},
	}
	svc.AnalyzeConversation(context.Background(), msgs)

	if !strings.Contains(mock.LastPrompt, "FINAL") {
		t.Fatalf("expected most recent content kept")
	}
	if strings.Contains(mock.LastPrompt, "Customer: "+long) {
		t.Fatalf("expected oldest context dropped")
	}
}

func TestAnalyzeConversation_RoundTripMinimalConversation(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sentiment": "positive", "confidence": 0.8, "key_points": ["interested in AI course"], "recommendation_to_salesperson": "Send the syllabus."}`}
	svc := NewAnalysisService(mock, zap.NewNop())

	msgs := []domain.Message{
		{Text: "I love this course", Speaker: domain.SpeakerCustomer},
		{Text: "Great to hear!", Speaker: domain.SpeakerAgent},
	}
	a := svc.AnalyzeConversation(context.Background(), msgs)
	if len(a.KeyPoints) < 1 {
		t.Fatalf("expected at least one key point")
	}
	if a.Confidence < 0.5 {
		t.Fatalf("expected confidence >= 0.5, got %v", a.Confidence)
	}
}
