package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager signs and verifies HS256 staff tokens.
type Manager struct {
	secret []byte
	expire time.Duration
	issuer string
	now    func() time.Time
}

type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	JTI    string `json:"jti"`
	jwtlib.RegisteredClaims
}

// Issued is a freshly signed token with the JTI the caller must store
// for revocation.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

func NewManager(secret string, expireSeconds int, issuer string) *Manager {
	return &Manager{secret: []byte(secret), expire: time.Duration(expireSeconds) * time.Second, issuer: issuer, now: time.Now}
}

// Issue signs a token for userID with a new random JTI.
func (m *Manager) Issue(userID int64, role string) (Issued, error) {
	jti := uuid.NewString()
	tok, exp, err := m.sign(userID, role, jti)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: tok, JTI: jti, ExpiresAt: exp}, nil
}

// Generate signs a token with a caller-chosen JTI.
func (m *Manager) Generate(userID int64, role, jti string) (string, error) {
	tok, _, err := m.sign(userID, role, jti)
	return tok, err
}

func (m *Manager) sign(userID int64, role, jti string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.expire)
	claims := Claims{
		UserID: userID,
		Role:   role,
		JTI:    jti,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        jti,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	return s, exp, err
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwtlib.WithIssuer(m.issuer), jwtlib.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwtlib.ErrTokenInvalidClaims
}

// IsExpired reports whether err from Parse means the token was well formed
// but past its expiry.
func IsExpired(err error) bool { return errors.Is(err, jwtlib.ErrTokenExpired) }

func (m *Manager) ExpireDuration() time.Duration { return m.expire }
