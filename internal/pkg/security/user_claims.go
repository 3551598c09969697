package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTSecret         string = "Clanhub"
	JWTExpirationTime        = time.Hour * 24
)

// UserClaims 会话身份载荷。身份签发在引擎之外完成，这里只消费。
type UserClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Clan     string `json:"clan"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
