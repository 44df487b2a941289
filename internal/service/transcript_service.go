package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/repository"
	"sales-voice/internal/store"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrInvalidSpeaker = errors.New("invalid speaker")
)

// Tope para el write-through a Postgres; al vencerse el mensaje queda
// solo en memoria y la finalización actúa de respaldo de durabilidad.
const persistTimeout = 2 * time.Second

// TranscriptService ingiere frases transcritas una por una: valida,
// resuelve dueño de la sala, acumula en el buffer vivo, persiste
// best-effort y dispara el análisis por frase para turnos del cliente.
type TranscriptService struct {
	logger   *zap.Logger
	live     *store.LiveStore
	messages repository.MessageRepository
	analysis *AnalysisService
}

func NewTranscriptService(
	logger *zap.Logger,
	live *store.LiveStore,
	messages repository.MessageRepository,
	analysis *AnalysisService,
) *TranscriptService {
	return &TranscriptService{
		logger:   logger,
		live:     live,
		messages: messages,
		analysis: analysis,
	}
}

type IngestInput struct {
	Text      string
	Speaker   string
	SentTS    float64
	RoomID    string
	UserEmail string
}

type IngestResult struct {
	RoomID             string
	Count              int
	Analysis           *domain.Analysis
	LatestCustomerText string
}

// Ingest procesa una frase. El buffer en memoria es la fuente de verdad
// durante la sesión viva: una falla del write-through durable se loggea
// y no falla la petición, igual que una falla del análisis.
func (s *TranscriptService) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return IngestResult{}, ErrEmptyMessage
	}
	if !domain.ValidSpeaker(input.Speaker) {
		return IngestResult{}, ErrInvalidSpeaker
	}

	owner := strings.TrimSpace(input.UserEmail)
	if owner == "" {
		owner, _ = s.live.Owner(input.RoomID)
	}
	if owner != "" && s.live.SetOwnerOnce(input.RoomID, owner) {
		s.logger.Info("room owner recorded", zap.String("room_id", input.RoomID), zap.String("owner", owner))
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		RoomID:     input.RoomID,
		Text:       text,
		Speaker:    input.Speaker,
		SentTS:     input.SentTS,
		ReceivedAt: time.Now().UTC(),
	}

	count := s.live.Append(input.RoomID, msg)

	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	if err := s.messages.Create(persistCtx, msg); err != nil {
		s.logger.Error("message write-through failed", zap.Error(err), zap.String("room_id", input.RoomID))
	}
	cancel()

	result := IngestResult{
		RoomID: input.RoomID,
		Count:  count,
	}

	if input.Speaker == domain.SpeakerCustomer {
		analysis := s.analysis.AnalyzeUtterance(ctx, text)
		s.live.SetAnalysis(input.RoomID, analysis)
		result.Analysis = &analysis
		result.LatestCustomerText = text
		s.logger.Info("utterance analyzed",
			zap.String("room_id", input.RoomID),
			zap.String("sentiment", analysis.Sentiment),
			zap.Float64("confidence", analysis.Confidence),
		)
	}

	return result, nil
}
