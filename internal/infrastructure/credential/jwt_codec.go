package credential

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

const issuer = "trainerdesk"

var ErrEmptySigningKey = errors.New("credential signing key is empty")

// userClaims is the payload of a stored credential.
type userClaims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Prenom string `json:"prenom,omitempty"`
	Nom    string `json:"nom,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec signs the stored user as an HS256 token so that an edited blob is
// rejected on the next start. With a positive ttl the credential also expires.
type JWTCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTCodec(signingKey string, ttl time.Duration) (*JWTCodec, error) {
	if signingKey == "" {
		return nil, ErrEmptySigningKey
	}
	return &JWTCodec{key: []byte(signingKey), ttl: ttl, now: time.Now}, nil
}

func (c *JWTCodec) Encode(user domain.User) (string, error) {
	now := c.now()
	claims := userClaims{
		Email:  user.Email,
		Role:   user.Role,
		Prenom: user.Prenom,
		Nom:    user.Nom,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.FormatInt(user.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Decode(blob string) (*domain.User, error) {
	var claims userClaims
	_, err := jwt.ParseWithClaims(blob, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, &domain.DecodingError{Op: "decode credential", Err: err}
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, &domain.DecodingError{Op: "decode credential", Err: fmt.Errorf("subject %q: %w", claims.Subject, err)}
	}

	return &domain.User{
		ID:     id,
		Email:  claims.Email,
		Role:   claims.Role,
		Prenom: claims.Prenom,
		Nom:    claims.Nom,
	}, nil
}
