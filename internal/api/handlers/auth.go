package handlers

import (
	"attendance-service/internal/api/dto"
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"attendance-service/internal/ports"
	"context"
	"log"
	"net/http"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by the auth middleware, if any.
func SessionFrom(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return s, ok && s != nil
}

// AuthHandler covers the session endpoints. Tokens are issued elsewhere;
// this side reports and revokes them.
type AuthHandler struct {
	Revoker    ports.TokenRevoker
	CookieName string
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SessionResponse{Subject: s.Subject, ExpiresAt: s.ExpiresAt})
}

// Logout revokes the caller's token until it would have expired and clears
// the dashboard cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if h.Revoker != nil {
		if err := h.Revoker.Revoke(r.Context(), s.TokenID, s.ExpiresAt); err != nil {
			log.Printf("revoke token failed: req_id=%s subject=%s err=%v", obs.RequestID(r.Context()), s.Subject, err)
			writeError(w, r, http.StatusServiceUnavailable, "logout is temporarily unavailable")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
