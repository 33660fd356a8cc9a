package proto

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used on the wire.
const (
	FieldEmail             = "email"
	FieldUsername          = "username"
	FieldPassword          = "password"
	FieldRefreshToken      = "refresh_token"
	FieldSessionToken      = "session_token"
	FieldSessionTTLSeconds = "session_ttl_seconds"
	FieldAccount           = "account"
	FieldTokens            = "tokens"
	FieldID                = "id"
	FieldActive            = "active"
	FieldCreatedAt         = "created_at"
	FieldLastLoginAt       = "last_login_at"
)

// RegisterRequest carries the fields of a Register call.
type RegisterRequest struct {
	Email    string
	Username string
	Password string
}

func (r RegisterRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldEmail:    structpb.NewStringValue(r.Email),
		FieldUsername: structpb.NewStringValue(r.Username),
		FieldPassword: structpb.NewStringValue(r.Password),
	})
}

func RegisterRequestFrom(s *structpb.Struct) RegisterRequest {
	return RegisterRequest{
		Email:    String(s, FieldEmail),
		Username: String(s, FieldUsername),
		Password: String(s, FieldPassword),
	}
}

type LoginRequest struct {
	Email    string
	Password string
}

func (r LoginRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldEmail:    structpb.NewStringValue(r.Email),
		FieldPassword: structpb.NewStringValue(r.Password),
	})
}

func LoginRequestFrom(s *structpb.Struct) LoginRequest {
	return LoginRequest{Email: String(s, FieldEmail), Password: String(s, FieldPassword)}
}

type RefreshRequest struct {
	RefreshToken string
}

func (r RefreshRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldRefreshToken: structpb.NewStringValue(r.RefreshToken),
	})
}

func RefreshRequestFrom(s *structpb.Struct) RefreshRequest {
	return RefreshRequest{RefreshToken: String(s, FieldRefreshToken)}
}

// Tokens is the wire view of a session/refresh pair.
type Tokens struct {
	SessionToken      string
	RefreshToken      string
	SessionTTLSeconds int64
}

func (t Tokens) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldSessionToken:      structpb.NewStringValue(t.SessionToken),
		FieldRefreshToken:      structpb.NewStringValue(t.RefreshToken),
		FieldSessionTTLSeconds: structpb.NewNumberValue(float64(t.SessionTTLSeconds)),
	})
}

func TokensFrom(s *structpb.Struct) Tokens {
	return Tokens{
		SessionToken:      String(s, FieldSessionToken),
		RefreshToken:      String(s, FieldRefreshToken),
		SessionTTLSeconds: int64(Number(s, FieldSessionTTLSeconds)),
	}
}

// Account is the wire view of an account. It never carries the password hash.
type Account struct {
	ID          string
	Email       string
	Username    string
	Active      bool
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

func (a Account) Struct() *structpb.Struct {
	f := map[string]*structpb.Value{
		FieldID:          structpb.NewStringValue(a.ID),
		FieldEmail:       structpb.NewStringValue(a.Email),
		FieldUsername:    structpb.NewStringValue(a.Username),
		FieldActive:      structpb.NewBoolValue(a.Active),
		FieldCreatedAt:   structpb.NewStringValue(a.CreatedAt.UTC().Format(time.RFC3339)),
		FieldLastLoginAt: structpb.NewNullValue(),
	}
	if a.LastLoginAt != nil {
		f[FieldLastLoginAt] = structpb.NewStringValue(a.LastLoginAt.UTC().Format(time.RFC3339))
	}
	return fields(f)
}

func AccountFrom(s *structpb.Struct) Account {
	a := Account{
		ID:       String(s, FieldID),
		Email:    String(s, FieldEmail),
		Username: String(s, FieldUsername),
		Active:   s.GetFields()[FieldActive].GetBoolValue(),
	}
	if t, err := time.Parse(time.RFC3339, String(s, FieldCreatedAt)); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, String(s, FieldLastLoginAt)); err == nil {
		a.LastLoginAt = &t
	}
	return a
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Account Account
	Tokens  Tokens
}

func (r AuthResponse) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldAccount: structpb.NewStructValue(r.Account.Struct()),
		FieldTokens:  structpb.NewStructValue(r.Tokens.Struct()),
	})
}

func AuthResponseFrom(s *structpb.Struct) AuthResponse {
	return AuthResponse{
		Account: AccountFrom(Nested(s, FieldAccount)),
		Tokens:  TokensFrom(Nested(s, FieldTokens)),
	}
}

// Wrap puts a single message under key, as Refresh and Me responses do.
func Wrap(key string, inner *structpb.Struct) *structpb.Struct {
	return fields(map[string]*structpb.Value{key: structpb.NewStructValue(inner)})
}

// String returns the string at key, or "" when absent or of another kind.
func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Number returns the number at key, or 0.
func Number(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

// Nested returns the struct at key, or nil.
func Nested(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

func fields(f map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: f}
}
