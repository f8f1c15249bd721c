package redis

import (
	"fmt"

	"github.com/mcoot/robogamehub/internal/model"
)

// Key prefix for all hub data
const keyPrefix = "robogamehub"

// sessionKey returns the Redis key for a session token
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// sessionScanPattern matches every session key
func sessionScanPattern() string {
	return fmt.Sprintf("%s:session:*", keyPrefix)
}

// userSessionsKey returns the Redis key for the SET of tokens held by a user
func userSessionsKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:user_sessions:%s", keyPrefix, userID)
}
