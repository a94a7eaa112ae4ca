package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type JWTManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	AccessJTI    string
	RefreshJTI   string
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Kind      TokenKind
	Version   int
	JTI       string
	ExpiresAt time.Time
}

func NewJWTManager(privatePath, publicPath, issuer string) (*JWTManager, error) {
	privPem, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubPem, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return NewJWTManagerFromKeys(privKey, pubKey, issuer), nil
}

// NewJWTManagerFromKeys builds a manager from already parsed keys.
func NewJWTManagerFromKeys(privKey *rsa.PrivateKey, pubKey *rsa.PublicKey, issuer string) *JWTManager {
	return &JWTManager{
		privateKey: privKey,
		publicKey:  pubKey,
		issuer:     issuer,
	}
}

// createJWT makes a signed JWT for given claims
func (m *JWTManager) createJWT(subject string, kind TokenKind, ttl time.Duration, tokenVersion int, jti string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"iss": m.issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
		"jti": jti,
		"typ": string(kind),
		"ver": tokenVersion,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenStr, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenStr, exp, nil
}

// GenerateTokenPair creates an access and a refresh token for the account uuid.
func (m *JWTManager) GenerateTokenPair(subject string, accessTTL, refreshTTL time.Duration, tokenVersion int) (*TokenPair, error) {
	accessJTI := uuid.New().String()
	accessToken, accessExp, err := m.createJWT(subject, AccessToken, accessTTL, tokenVersion, accessJTI)
	if err != nil {
		return nil, err
	}

	refreshJTI := uuid.New().String()
	refreshToken, refreshExp, err := m.createJWT(subject, RefreshToken, refreshTTL, tokenVersion, refreshJTI)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		AccessJTI:    accessJTI,
		RefreshJTI:   refreshJTI,
	}, nil
}

// VerifyToken checks the RS256 signature, issuer and expiry and returns the claims.
func (m *JWTManager) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, _ := mc["sub"].(string)
	jti, _ := mc["jti"].(string)
	typ, _ := mc["typ"].(string)
	ver, _ := mc["ver"].(float64)
	if sub == "" || jti == "" {
		return nil, errors.New("token is missing sub or jti")
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("token is missing exp")
	}

	return &Claims{
		Subject:   sub,
		Kind:      TokenKind(typ),
		Version:   int(ver),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}

// HashToken produces SHA256 hex of the token for storage
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
