package store

import (
	"strings"
	"sync"

	"sales-voice/internal/domain"
)

// LiveStore es el estado mutable del proceso para sesiones en curso:
// buffer de mensajes por sala, dueño por sala y último análisis por frase.
// Se crea al arrancar el proceso y no sobrevive reinicios; la capa durable
// es Postgres. Todas las mutaciones van protegidas por el mutex porque los
// handlers corren en goroutines concurrentes.
type LiveStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
	owners   map[string]string
	analyses map[string]domain.Analysis
}

func NewLiveStore() *LiveStore {
	return &LiveStore{
		messages: make(map[string][]domain.Message),
		owners:   make(map[string]string),
		analyses: make(map[string]domain.Analysis),
	}
}

// Append agrega un mensaje al buffer de la sala (creándolo si no existe)
// y devuelve el conteo resultante. El orden de inserción se preserva.
func (s *LiveStore) Append(roomID string, msg domain.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[roomID] = append(s.messages[roomID], msg)
	return len(s.messages[roomID])
}

// Messages devuelve una copia del buffer de la sala en orden de inserción.
func (s *LiveStore) Messages(roomID string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.messages[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(buf))
	copy(out, buf)
	return out
}

// Count devuelve el conteo actual de mensajes de la sala.
func (s *LiveStore) Count(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[roomID])
}

// HasRoom indica si la sala tiene buffer en memoria.
func (s *LiveStore) HasRoom(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.messages[roomID]
	return ok
}

// RoomCount devuelve cuántas salas tienen buffer activo.
func (s *LiveStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// SetOwnerOnce registra al dueño de la sala solo si aún no tiene uno
// (first-write-wins). Devuelve true si el registro quedó asignado a email.
func (s *LiveStore) SetOwnerOnce(roomID, email string) bool {
	email = strings.TrimSpace(email)
	if roomID == "" || email == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.owners[roomID]; ok {
		return current == email
	}
	s.owners[roomID] = email
	return true
}

// Owner devuelve el dueño registrado de la sala, si existe.
func (s *LiveStore) Owner(roomID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.owners[roomID]
	return email, ok
}

// RoomsByOwner proyecta las salas activas del usuario a (sala, conteo).
func (s *LiveStore) RoomsByOwner(email string) []domain.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SessionSummary
	for roomID, buf := range s.messages {
		if s.owners[roomID] != email {
			continue
		}
		out = append(out, domain.SessionSummary{RoomID: roomID, Count: len(buf)})
	}
	return out
}

// SetAnalysis guarda el último análisis por frase de la sala (latest-wins).
func (s *LiveStore) SetAnalysis(roomID string, a domain.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[roomID] = a
}

// Analysis devuelve el último análisis por frase de la sala, si existe.
func (s *LiveStore) Analysis(roomID string) (domain.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[roomID]
	return a, ok
}
