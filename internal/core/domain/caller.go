package domain

import "encoding/json"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleOperator
}

// Caller is the identity resolved by the identity provider.
type Caller struct {
	AuthUserID string  `json:"authUserId"`
	Email      *string `json:"email"`
	ProfileID  int64   `json:"profileId"`
	FullName   *string `json:"fullname"`
	Role       Role    `json:"-"`
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// SellerID returns the identity recorded as seller on sales.
func (c *Caller) SellerID() (string, bool) {
	if c == nil || c.AuthUserID == "" {
		return "", false
	}
	return c.AuthUserID, true
}

// DisplayName prefers the full name, then the email.
func (c *Caller) DisplayName() string {
	switch {
	case c == nil:
		return ""
	case c.FullName != nil && *c.FullName != "":
		return *c.FullName
	case c.Email != nil:
		return *c.Email
	default:
		return c.AuthUserID
	}
}

type callerJSON struct {
	AuthUserID string  `json:"authUserId"`
	Email      *string `json:"email"`
	ProfileID  int64   `json:"profileId"`
	FullName   *string `json:"fullname"`
	IsAdmin    bool    `json:"isAdmin"`
}

// MarshalJSON keeps the wire shape of the identity endpoint, which carries
// an isAdmin flag rather than a role.
func (c Caller) MarshalJSON() ([]byte, error) {
	return json.Marshal(callerJSON{
		AuthUserID: c.AuthUserID,
		Email:      c.Email,
		ProfileID:  c.ProfileID,
		FullName:   c.FullName,
		IsAdmin:    c.Role == RoleAdmin,
	})
}

func (c *Caller) UnmarshalJSON(data []byte) error {
	var raw callerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Caller{
		AuthUserID: raw.AuthUserID,
		Email:      raw.Email,
		ProfileID:  raw.ProfileID,
		FullName:   raw.FullName,
		Role:       RoleFromAdminFlag(raw.IsAdmin),
	}
	return nil
}
