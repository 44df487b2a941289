// Package realtime emite credenciales de ingreso a salas del proveedor
// de transporte en tiempo real (LiveKit). El token es un JWT HS256 con
// el formato de grants de video que espera el servidor de salas.
package realtime

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 6 * time.Hour

var ErrInvalidGrant = errors.New("invalid room grant")

// VideoGrant describe los permisos del participante dentro de la sala.
type VideoGrant struct {
	RoomJoin     bool   `json:"roomJoin"`
	Room         string `json:"room"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type roomTokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

// TokenService firma tokens de ingreso a sala con las credenciales API
// del proveedor realtime.
type TokenService struct {
	apiKey    string
	apiSecret string
	wsURL     string
	ttl       time.Duration
}

func NewTokenService(apiKey, apiSecret, wsURL string) *TokenService {
	return &TokenService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
		ttl:       defaultTokenTTL,
	}
}

// WSURL devuelve la URL websocket del servidor de salas.
func (s *TokenService) WSURL() string {
	return s.wsURL
}

// RoomToken emite un token de corta vida que permite al participante
// unirse a la sala, publicar y suscribirse.
func (s *TokenService) RoomToken(roomName, participantName string) (string, error) {
	roomName = strings.TrimSpace(roomName)
	participantName = strings.TrimSpace(participantName)
	if roomName == "" || participantName == "" {
		return "", ErrInvalidGrant
	}

	now := time.Now().UTC()
	claims := roomTokenClaims{
		Name: participantName,
		Video: VideoGrant{
			RoomJoin:     true,
			Room:         roomName,
			CanPublish:   true,
			CanSubscribe: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   participantName,
			ID:        participantName,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.apiSecret))
}
