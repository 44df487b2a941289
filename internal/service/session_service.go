package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/repository"
	"sales-voice/internal/store"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("session access denied")
)

const ownerSessionsLimit = 50

// SessionService finaliza sesiones (colapsa el buffer vivo en un registro
// durable analizado) y sirve las lecturas que cruzan ambos tiers.
type SessionService struct {
	logger   *zap.Logger
	live     *store.LiveStore
	sessions repository.SessionRepository
	messages repository.MessageRepository
	analysis *AnalysisService
}

func NewSessionService(
	logger *zap.Logger,
	live *store.LiveStore,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	analysis *AnalysisService,
) *SessionService {
	return &SessionService{
		logger:   logger,
		live:     live,
		sessions: sessions,
		messages: messages,
		analysis: analysis,
	}
}

type FinalizeResult struct {
	RoomID        string
	DurableID     string
	TotalMessages int
}

// Finalize colapsa el buffer de la sala en un registro durable con análisis
// de conversación completa. Es seguro llamarla varias veces por sala: el
// upsert reemplaza el snapshot manteniendo el id durable. Sin buffer vivo,
// una sesión ya finalizada se devuelve tal cual (re-fetch idempotente).
func (s *SessionService) Finalize(ctx context.Context, roomID, userEmail string) (FinalizeResult, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return FinalizeResult{}, ErrRoomNotFound
	}

	if !s.live.HasRoom(roomID) {
		existing, err := s.sessions.GetByRoomID(ctx, roomID)
		if err == nil {
			return FinalizeResult{
				RoomID:        roomID,
				DurableID:     existing.ID,
				TotalMessages: existing.TotalMessages,
			}, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return FinalizeResult{}, ErrRoomNotFound
		}
		return FinalizeResult{}, fmt.Errorf("lookup finalized session: %w", err)
	}

	msgs := s.live.Messages(roomID)
	s.logger.Info("finalizing session", zap.String("room_id", roomID), zap.Int("messages", len(msgs)))

	analysis := s.analysis.AnalyzeConversation(ctx, msgs)

	owner := strings.TrimSpace(userEmail)
	if owner == "" {
		owner, _ = s.live.Owner(roomID)
	}

	session := domain.Session{
		ID:             uuid.NewString(),
		RoomID:         roomID,
		OwnerEmail:     owner,
		Messages:       msgs,
		TotalMessages:  len(msgs),
		LatestAnalysis: &analysis,
		FinalizedAt:    time.Now().UTC(),
	}

	durableID, err := s.sessions.Upsert(ctx, session)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("upsert session: %w", err)
	}

	s.logger.Info("session saved", zap.String("room_id", roomID), zap.String("durable_id", durableID), zap.Int("messages", len(msgs)))

	return FinalizeResult{
		RoomID:        roomID,
		DurableID:     durableID,
		TotalMessages: len(msgs),
	}, nil
}

// ListSessions une las salas vivas del usuario con sus sesiones durables.
// En colisión de sala gana el tier vivo: su conteo es más actual que el
// snapshot guardado. Una falla del tier durable degrada a solo-memoria.
func (s *SessionService) ListSessions(ctx context.Context, ownerEmail string) []domain.SessionSummary {
	merged := make(map[string]domain.SessionSummary)

	durable, err := s.sessions.ListByOwner(ctx, ownerEmail, ownerSessionsLimit)
	if err != nil {
		s.logger.Error("list durable sessions failed", zap.Error(err), zap.String("owner", ownerEmail))
	}
	for _, sess := range durable {
		merged[sess.RoomID] = sess
	}
	for _, sess := range s.live.RoomsByOwner(ownerEmail) {
		merged[sess.RoomID] = sess
	}

	out := make([]domain.SessionSummary, 0, len(merged))
	for _, sess := range merged {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// GetSession busca primero el tier durable; una sesión con dueño distinto
// al caller se rechaza, una sin dueño (datos legacy) pasa. Sin registro
// durable cae al buffer vivo proyectando al caller como dueño.
func (s *SessionService) GetSession(ctx context.Context, sessionID, callerEmail string) (domain.Session, error) {
	sess, err := s.sessions.GetByRoomID(ctx, sessionID)
	if err == nil {
		if sess.OwnerEmail != "" && sess.OwnerEmail != callerEmail {
			return domain.Session{}, ErrSessionForbidden
		}
		return sess, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	if s.live.HasRoom(sessionID) {
		msgs := s.live.Messages(sessionID)
		live := domain.Session{
			RoomID:        sessionID,
			OwnerEmail:    callerEmail,
			Messages:      msgs,
			TotalMessages: len(msgs),
			FinalizedAt:   time.Now().UTC(),
		}
		if analysis, ok := s.live.Analysis(sessionID); ok {
			live.LatestAnalysis = &analysis
		}
		return live, nil
	}

	return domain.Session{}, ErrSessionNotFound
}

// RecentMessages devuelve los últimos mensajes de la sala. Arranca del
// buffer vivo y, si no alcanza el límite, suplementa del tier durable;
// la mezcla se deduplica por id y se ordena por sent_ts ascendente.
func (s *SessionService) RecentMessages(ctx context.Context, roomID string, limit int) []domain.Message {
	msgs := s.live.Messages(roomID)

	if len(msgs) < limit {
		durable, err := s.messages.ListRecentByRoom(ctx, roomID, limit)
		if err != nil {
			s.logger.Error("durable messages query failed", zap.Error(err), zap.String("room_id", roomID))
		} else {
			seen := make(map[string]bool, len(msgs))
			for _, m := range msgs {
				seen[m.ID] = true
			}
			for _, m := range durable {
				if m.ID != "" && seen[m.ID] {
					continue
				}
				msgs = append(msgs, m)
			}
			sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].SentTS < msgs[j].SentTS })
		}
	}

	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}

// LatestAnalysis devuelve el último análisis por frase de la sala.
// Ausencia no es error: la sala puede no haber tenido turnos del cliente.
func (s *SessionService) LatestAnalysis(roomID string) (domain.Analysis, bool) {
	return s.live.Analysis(roomID)
}
