package services

import (
	"errors"
	"fmt"

	"github.com/Toleubekov/auction-system/auction"
	"github.com/golang-jwt/jwt/v4"
)

// jwtCredentialVerifier проверяет учётные данные подключений к аукционной
// комнате. Движок токены не выпускает - он только проверяет уже выданные
// при логине (handlers/auth_handler.go).
type jwtCredentialVerifier struct {
	secret []byte
}

func NewAuctionCredentialVerifier(jwtSecret string) auction.CredentialVerifier {
	return &jwtCredentialVerifier{secret: []byte(jwtSecret)}
}

func (v *jwtCredentialVerifier) Verify(role auction.Role, auth auction.AuthData) (auction.Identity, error) {
	switch role {
	case auction.RoleViewer:
		name := auth.DisplayName
		if name == "" {
			name = "viewer"
		}
		return auction.Identity{Role: auction.RoleViewer, DisplayName: name}, nil

	case auction.RoleAdmin, auction.RoleBidder:
		claims, err := v.parseToken(auth.Token)
		if err != nil {
			return auction.Identity{}, err
		}

		userID, err := userIDClaim(claims)
		if err != nil {
			return auction.Identity{}, err
		}
		name, _ := claims["name"].(string)
		if auth.DisplayName != "" {
			name = auth.DisplayName
		}

		if role == auction.RoleAdmin {
			tokenRole, _ := claims["role"].(string)
			if tokenRole != "admin" && tokenRole != "organizer" {
				return auction.Identity{}, errors.New("token does not grant auction admin access")
			}
			return auction.Identity{Role: auction.RoleAdmin, UserID: userID, DisplayName: name}, nil
		}

		team := auth.TeamName
		if team == "" {
			team = name
		}
		return auction.Identity{Role: auction.RoleBidder, UserID: userID, DisplayName: name, TeamName: team}, nil

	default:
		return auction.Identity{}, fmt.Errorf("unknown role %q", role)
	}
}

func (v *jwtCredentialVerifier) parseToken(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errors.New("auth token is required")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func userIDClaim(claims jwt.MapClaims) (int, error) {
	raw, ok := claims["user_id"]
	if !ok {
		return 0, errors.New("missing user_id claim")
	}
	idFloat, ok := raw.(float64)
	if !ok || idFloat != float64(int(idFloat)) || int(idFloat) <= 0 {
		return 0, errors.New("invalid user_id claim")
	}
	return int(idFloat), nil
}
