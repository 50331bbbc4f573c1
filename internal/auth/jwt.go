package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager issues and validates seat tokens. A seat token binds one
// agent to one seat of one match, so an agent can neither act for
// another seat nor read another seat's hole cards.
type JWTManager struct {
	secretKey []byte
	issuer    string
}

// SeatClaims are the claims carried by a seat token.
type SeatClaims struct {
	MatchID uuid.UUID `json:"match_id"`
	AgentID string    `json:"agent_id"`
	Seat    int       `json:"seat"`
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey, issuer string) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// GenerateSeatToken signs a token for an agent's seat in a match.
func (manager *JWTManager) GenerateSeatToken(matchID uuid.UUID, agentID string, seat int) (string, error) {
	claims := SeatClaims{
		MatchID: matchID,
		AgentID: agentID,
		Seat:    seat,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    manager.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(manager.secretKey)
}

// ValidateSeatToken parses and verifies a seat token.
func (manager *JWTManager) ValidateSeatToken(tokenString string) (*SeatClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SeatClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return manager.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SeatClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ExtractTokenFromBearer strips the "Bearer " prefix from an
// Authorization header value.
func (manager *JWTManager) ExtractTokenFromBearer(bearerToken string) string {
	if len(bearerToken) > 7 && bearerToken[:7] == "Bearer " {
		return bearerToken[7:]
	}
	return ""
}
