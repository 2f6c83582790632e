package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/utils"
)

// JoinClaim is the identity a client presents in its first frame.
type JoinClaim struct {
	PlayerID  string `json:"playerId" validate:"required,address"`
	Name      string `json:"name,omitempty" validate:"max=256"`
	AuthToken string `json:"authToken,omitempty" validate:"max=128"`
}

// Identity is a resolved, durable player identity plus the host flag for one world.
type Identity struct {
	PlayerID string
	Name     string
	IsHost   bool
}

// Config controls token enforcement.
type Config struct {
	Secret       string
	RequireToken bool
}

// Authenticator resolves join claims. It never touches the ledger.
type Authenticator struct {
	secret       []byte
	requireToken bool
	validate     *validator.Validate
	verified     *expirable.LRU[string, string]
}

// New creates an Authenticator.
func New(cfg Config) (*Authenticator, error) {
	if cfg.RequireToken && cfg.Secret == "" {
		return nil, errors.New(ErrMsgEmptySecret)
	}

	v := validator.New()
	_ = v.RegisterValidation("address", validateAddress)

	return &Authenticator{
		secret:       []byte(cfg.Secret),
		requireToken: cfg.RequireToken,
		validate:     v,
		verified:     expirable.NewLRU[string, string](TokenCacheSize, nil, TokenCacheTTL),
	}, nil
}

// Resolve validates the claim and computes the host flag against worldOwnerID.
// A missing or malformed claim fails with ErrAuthentication; there is no guest fallback.
func (a *Authenticator) Resolve(claim *JoinClaim, worldOwnerID string) (Identity, error) {
	if claim == nil {
		return Identity{}, fmt.Errorf("%w: %s", domain.ErrAuthentication, ErrMsgMissingClaim)
	}

	c := *claim
	c.PlayerID = strings.TrimSpace(c.PlayerID)
	if err := a.validate.Struct(&c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "PlayerID" {
			return Identity{}, fmt.Errorf("%w: %s", domain.ErrAuthentication, ErrMsgMalformedID)
		}
		return Identity{}, fmt.Errorf("%w: %s", domain.ErrAuthentication, ErrMsgMalformedJoin)
	}
	playerID := strings.ToLower(c.PlayerID)

	if err := a.verifyToken(playerID, strings.TrimSpace(c.AuthToken)); err != nil {
		return Identity{}, err
	}

	name := utils.NormalizeText(c.Name, MaxNameRunes)
	if name == "" {
		name = ShortAddress(playerID)
	}

	return Identity{
		PlayerID: playerID,
		Name:     name,
		IsHost:   playerID == strings.ToLower(worldOwnerID),
	}, nil
}

// IssueToken returns the token that verifies for playerID.
func (a *Authenticator) IssueToken(playerID string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(strings.ToLower(playerID)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *Authenticator) verifyToken(playerID, token string) error {
	if token == "" {
		if a.requireToken {
			return fmt.Errorf("%w: %s", domain.ErrAuthentication, ErrMsgTokenRequired)
		}
		return nil
	}

	if cached, ok := a.verified.Get(playerID); ok && hmac.Equal([]byte(cached), []byte(token)) {
		return nil
	}

	want := a.IssueToken(playerID)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(token))) {
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, ErrMsgTokenMismatch)
	}

	a.verified.Add(playerID, want)
	return nil
}

func validateAddress(fl validator.FieldLevel) bool {
	return IsAddress(fl.Field().String())
}
