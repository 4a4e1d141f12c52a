package auth

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentityFromToken verifies a connection-time credential and returns the
// user identity bound to the new channel. The signature is checked against
// the same JWT_SECRET the login endpoint signs with; a token whose claims
// merely look well formed is not enough.
func IdentityFromToken(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return "", fmt.Errorf("missing credential token")
	}

	claims, err := parseJWT(tokenString)
	if err != nil {
		return "", err
	}

	switch userID := claims["userID"].(type) {
	case float64:
		if userID <= 0 {
			return "", fmt.Errorf("invalid userID claim")
		}
		return strconv.Itoa(int(userID)), nil
	case string:
		if userID == "" {
			return "", fmt.Errorf("invalid userID claim")
		}
		return userID, nil
	default:
		return "", fmt.Errorf("missing userID claim")
	}
}
