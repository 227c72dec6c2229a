package controller

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	userIdKey      = "user_id"
	communityIdKey = "community_id"
)

type claims struct {
	UserId      string
	CommunityId string
}

// IssueToken signs a caller identity with secret. Tokens are normally minted by the identity provider.
func IssueToken(secret, userId, communityId string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdKey:      userId,
		communityIdKey: communityId,
	})

	return token.SignedString([]byte(secret))
}

func (c controller) parseJWT(tokenString string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userId, ok := mapClaims[userIdKey].(string)
	if !ok || userId == "" {
		return nil, ErrInvalidToken
	}
	communityId, _ := mapClaims[communityIdKey].(string)

	return &claims{
		UserId:      userId,
		CommunityId: communityId,
	}, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
