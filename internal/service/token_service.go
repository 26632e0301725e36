package service

import (
	"errors"
	"strings"
	"time"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenSecretMissing = errors.New("jwt secret is not configured")
	ErrTokenInvalid       = errors.New("invalid token")
)

// ActorClaims 后台令牌声明
type ActorClaims struct {
	ActorID  uint   `json:"actor_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext 转换为服务层使用的身份
func (c *ActorClaims) AuthContext() AuthContext {
	if c == nil {
		return AuthContext{}
	}
	return AuthContext{
		ActorID:  c.ActorID,
		Username: c.Username,
		Role:     strings.ToLower(strings.TrimSpace(c.Role)),
	}
}

// TokenService 后台 HS256 令牌签发与校验（登录在外部系统完成，令牌由 CLI 或上游门户签发）
type TokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

func (s *TokenService) Issue(actorID uint, username, role string) (string, time.Time, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return "", time.Time{}, ErrTokenSecretMissing
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role != constants.RoleAdmin && role != constants.RoleViewer {
		return "", time.Time{}, newValidationError("role", ErrInvalidRole)
	}
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := ActorClaims{
		ActorID:  actorID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 校验签名、过期时间与签发方，并要求携带 actor id
func (s *TokenService) Parse(tokenString string) (*ActorClaims, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return nil, ErrTokenSecretMissing
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	token, err := parser.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid || claims.ActorID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
