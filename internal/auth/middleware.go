package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	MatchIDKey contextKey = "match_id"
	AgentIDKey contextKey = "agent_id"
	SeatKey    contextKey = "seat"
)

type AuthMiddleware struct {
	jwtManager *JWTManager
}

func NewAuthMiddleware(jwtManager *JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// RequireSeat rejects requests without a valid seat token and puts the
// token's match, agent and seat into the request context.
func (m *AuthMiddleware) RequireSeat(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "Seat token required")
			return
		}

		tokenString := m.jwtManager.ExtractTokenFromBearer(authHeader)
		if tokenString == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "Seat token required")
			return
		}

		claims, err := m.jwtManager.ValidateSeatToken(tokenString)
		if err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "Invalid seat token")
			return
		}

		ctx := context.WithValue(r.Context(), MatchIDKey, claims.MatchID)
		ctx = context.WithValue(ctx, AgentIDKey, claims.AgentID)
		ctx = context.WithValue(ctx, SeatKey, claims.Seat)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MatchIDFromContext returns the authenticated match id.
func MatchIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(MatchIDKey).(uuid.UUID)
	return id, ok
}

// AgentIDFromContext returns the authenticated agent id.
func AgentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AgentIDKey).(string)
	return id, ok
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	json.NewEncoder(w).Encode(response)
}
