package domain

import "time"

// Session es la vista durable y finalizada de la conversación de una sala.
// OwnerEmail vacío marca una sesión legacy accesible a cualquier usuario autenticado.
type Session struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	OwnerEmail     string    `json:"owner_email,omitempty"`
	Messages       []Message `json:"messages"`
	TotalMessages  int       `json:"total_messages"`
	LatestAnalysis *Analysis `json:"latest_analysis,omitempty"`
	FinalizedAt    time.Time `json:"finalized_at"`
}

// SessionSummary proyecta una sesión para listados (sala + conteo).
type SessionSummary struct {
	RoomID string `json:"room_id"`
	Count  int    `json:"count"`
}
