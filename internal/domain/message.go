package domain

import "time"

// Speaker identifica quién produjo una frase en la sala.
const (
	SpeakerCustomer = "customer"
	SpeakerAgent    = "agent"
)

// ValidSpeaker indica si el valor pertenece al enum de speakers.
func ValidSpeaker(s string) bool {
	return s == SpeakerCustomer || s == SpeakerAgent
}

// Message es una frase transcrita de la conversación de voz.
// SentTS lo asigna el productor (agente de voz); ReceivedAt el servidor.
type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	Text       string    `json:"text"`
	Speaker    string    `json:"speaker"`
	SentTS     float64   `json:"sent_ts"`
	ReceivedAt time.Time `json:"received_at"`
}
