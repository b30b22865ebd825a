package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "mealmaker-backend/errors"

	clerkjwt "github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	NameKey   contextKey = "name"
)

var errNoVerifier = errors.New("no token verifier configured")

// AuthMiddleware verifies bearer tokens issued by Clerk, or HS256 tokens
// signed with a shared secret when Clerk is not configured. With required
// unset, requests without an Authorization header pass through anonymously;
// a header that is present must still verify.
type AuthMiddleware struct {
	jwtSecret string
	useClerk  bool
	required  bool
}

func NewAuthMiddleware(jwtSecret string, useClerk, required bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		useClerk:  useClerk,
		required:  required,
	}
}

func (m *AuthMiddleware) Required() bool {
	return m.required
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.required {
				respondError(w, apperrors.Unauthorized("Authorization header required"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			respondError(w, apperrors.Unauthorized("Invalid authorization format. Use 'Bearer <token>'"))
			return
		}

		claims, err := m.verify(r.Context(), tokenString)
		if err != nil {
			zap.L().Debug("Token verification failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			respondError(w, apperrors.TokenInvalid())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.userID)
		if claims.email != "" {
			ctx = context.WithValue(ctx, EmailKey, claims.email)
		}
		if claims.name != "" {
			ctx = context.WithValue(ctx, NameKey, claims.name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type identity struct {
	userID string
	email  string
	name   string
}

func (m *AuthMiddleware) verify(ctx context.Context, tokenString string) (*identity, error) {
	if m.useClerk {
		claims, err := clerkjwt.Verify(ctx, &clerkjwt.VerifyParams{Token: tokenString})
		if err != nil {
			return nil, fmt.Errorf("verifying clerk session: %w", err)
		}
		if claims.Subject == "" {
			return nil, errors.New("clerk session has no subject")
		}
		return &identity{userID: claims.Subject}, nil
	}

	if m.jwtSecret == "" {
		return nil, errNoVerifier
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}
		return SigningKey(m.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, errors.New("user id not found in token")
	}

	id := &identity{userID: userID}
	id.email, _ = claims["email"].(string)
	id.name, _ = claims["name"].(string)
	if metadata, ok := claims["user_metadata"].(map[string]interface{}); ok && id.name == "" {
		id.name, _ = metadata["full_name"].(string)
	}
	return id, nil
}

// SigningKey returns the HMAC key for secret. Base64 secrets of at least
// 32 decoded bytes are used decoded; anything else is used as raw bytes.
func SigningKey(secret string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= 32 {
		return decoded
	}
	return []byte(secret)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

func GetUserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(NameKey).(string)
	return name, ok
}

func respondError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.GetHTTPStatus(appErr.Type))
	json.NewEncoder(w).Encode(map[string]string{
		"detail":  appErr.Message,
		"message": appErr.Message,
		"code":    string(appErr.Code),
	})
}
