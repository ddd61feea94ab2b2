package model

import "time"

// User represents a farmer account as stored in the `users` table.
// Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID                – primary key identifier of the account.
//  Email             – unique email address (lowercased).
//  Phone             – unique phone number (nullable).
//  PasswordHash      – bcrypt hashed password; never the plaintext.
//  Name              – display name shown in the UI.
//  Location          – free-text location (nullable).
//  Language          – preferred UI language code (en, hi, es, sw).
//  Units             – measurement system ("metric" or "imperial").
//  Theme             – UI theme name (emerald, forest, ocean, sunset).
//  FarmName          – name of the farm (nullable).
//  FarmSize          – free-text farm size (nullable).
//  Crops             – comma-joined crop list; split on read.
//  NotificationEmail – email notification toggle.
//  NotificationPush  – push notification toggle.
//  OAuthProvider     – external identity provider name (nullable).
//  OAuthID           – provider-issued identifier (nullable).
//  CreatedAt         – timestamp of registration.
//  LastLogin         – timestamp of last successful login (nullable).
//  IsActive          – whether the account is active.
type User struct {
	ID                uint64     // users.id
	Email             string     // users.email
	Phone             *string    // users.phone (nullable)
	PasswordHash      string     // users.password_hash
	Name              string     // users.name
	Location          *string    // users.location (nullable)
	Language          string     // users.language
	Units             string     // users.units
	Theme             string     // users.theme
	FarmName          *string    // users.farm_name (nullable)
	FarmSize          *string    // users.farm_size (nullable)
	Crops             string     // users.crops (comma-joined)
	NotificationEmail bool       // users.notification_email
	NotificationPush  bool       // users.notification_push
	OAuthProvider     *string    // users.oauth_provider (nullable)
	OAuthID           *string    // users.oauth_id (nullable)
	CreatedAt         time.Time  // users.created_at
	LastLogin         *time.Time // users.last_login (nullable)
	IsActive          bool       // users.is_active
}

// CropList splits the stored comma-joined crop string back into a
// slice. Empty entries produced by stray commas are dropped.
func (u *User) CropList() []string {
	return SplitCrops(u.Crops)
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation. The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
