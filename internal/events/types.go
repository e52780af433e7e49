package events

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Timestamp accepts a JSON number or a numeric string, in unix seconds or
// milliseconds, or an RFC3339 string. Missing or unparsable values resolve
// to the time of decoding.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Now().UTC()
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			t.Time = parseTimeString(s)
			return nil
		}
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		t.Time = fromUnixFlexible(int64(n))
		return nil
	}
	t.Time = time.Now().UTC()
	return nil
}

func parseTimeString(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnixFlexible(n)
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}

// fromUnixFlexible treats values that look like milliseconds as such.
func fromUnixFlexible(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// ProfileCreated is emitted when a new profile object is minted.
type ProfileCreated struct {
	ProfileID    string    `json:"profile_id"`
	OwnerAddress string    `json:"owner_address"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	ProfilePhoto string    `json:"profile_photo"`
	CoverPhoto   string    `json:"cover_photo"`
	Website      string    `json:"website"`
	CreatedAt    Timestamp `json:"timestamp"`
}

// ProfileUpdated carries a partial update; nil fields leave the stored
// value untouched.
type ProfileUpdated struct {
	ProfileID    string  `json:"profile_id"`
	DisplayName  *string `json:"display_name"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
	CoverPhoto   *string `json:"cover_photo"`
	Website      *string `json:"website"`

	Birthdate          *string `json:"birthdate"`
	CurrentLocation    *string `json:"current_location"`
	RaisedLocation     *string `json:"raised_location"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	Gender             *string `json:"gender"`
	PoliticalView      *string `json:"political_view"`
	Religion           *string `json:"religion"`
	Education          *string `json:"education"`
	PrimaryLanguage    *string `json:"primary_language"`
	RelationshipStatus *string `json:"relationship_status"`
	XUsername          *string `json:"x_username"`
	MastodonUsername   *string `json:"mastodon_username"`
	FacebookUsername   *string `json:"facebook_username"`
	RedditUsername     *string `json:"reddit_username"`
	GithubUsername     *string `json:"github_username"`

	UpdatedAt Timestamp `json:"timestamp"`
}

// HasSensitiveFields reports whether any sensitive self-reported field is
// present in the update.
func (e *ProfileUpdated) HasSensitiveFields() bool {
	for _, p := range []*string{
		e.Birthdate, e.CurrentLocation, e.RaisedLocation, e.Phone, e.Email,
		e.Gender, e.PoliticalView, e.Religion, e.Education, e.PrimaryLanguage,
		e.RelationshipStatus, e.XUsername, e.MastodonUsername,
		e.FacebookUsername, e.RedditUsername, e.GithubUsername,
	} {
		if p != nil {
			return true
		}
	}
	return false
}

// UsernameChanged covers both UsernameRegisteredEvent and
// UsernameUpdatedEvent; the two differ only in the emitting module.
type UsernameChanged struct {
	ProfileID    string    `json:"profile_id"`
	OwnerAddress string    `json:"owner_address"`
	Username     string    `json:"username"`
	UpdatedAt    Timestamp `json:"timestamp"`
}

// BlockListCreated links an on-chain block-list object to its owner.
type BlockListCreated struct {
	BlockListID  string    `json:"block_list_id"`
	OwnerAddress string    `json:"owner"`
	CreatedAt    Timestamp `json:"timestamp"`
}

// PlatformCreated is emitted when a platform registers on-chain.
type PlatformCreated struct {
	PlatformID       string          `json:"platform_id"`
	Name             string          `json:"name"`
	Tagline          string          `json:"tagline"`
	Description      *string         `json:"description"`
	Logo             *string         `json:"logo"`
	DeveloperAddress string          `json:"developer"`
	TermsOfService   *string         `json:"terms_of_service"`
	PrivacyPolicy    *string         `json:"privacy_policy"`
	PlatformNames    json.RawMessage `json:"platform_names"`
	Links            json.RawMessage `json:"links"`
	Status           PlatformStatus  `json:"status"`
	CreatedAt        Timestamp       `json:"timestamp"`
}

// PlatformStatus accepts either a bare number or the chain's nested
// {"status": n} object encoding.
type PlatformStatus struct {
	Value int
}

func (s *PlatformStatus) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		s.Value = n
		return nil
	}
	var wrapped struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil {
		s.Value = wrapped.Status
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		if n, err := strconv.Atoi(str); err == nil {
			s.Value = n
		}
	}
	return nil
}

// PlatformUpdated carries a partial platform update; approval fields are
// never touched here.
type PlatformUpdated struct {
	PlatformID     string          `json:"platform_id"`
	Name           *string         `json:"name"`
	Tagline        *string         `json:"tagline"`
	Description    *string         `json:"description"`
	Logo           *string         `json:"logo"`
	TermsOfService *string         `json:"terms_of_service"`
	PrivacyPolicy  *string         `json:"privacy_policy"`
	PlatformNames  json.RawMessage `json:"platform_names"`
	Links          json.RawMessage `json:"links"`
	Status         *PlatformStatus `json:"status"`
	UpdatedAt      Timestamp       `json:"timestamp"`
}

// ModeratorChange covers ModeratorAddedEvent and ModeratorRemovedEvent.
type ModeratorChange struct {
	PlatformID       string    `json:"platform_id"`
	ModeratorAddress string    `json:"moderator_address"`
	ActorAddress     string    `json:"added_by"`
	ChangedAt        Timestamp `json:"timestamp"`
}

// PlatformBlockChange covers platform-level block and unblock events.
type PlatformBlockChange struct {
	PlatformID   string    `json:"platform_id"`
	ProfileID    string    `json:"profile_id"`
	ActorAddress string    `json:"blocked_by"`
	ChangedAt    Timestamp `json:"timestamp"`
}

// PlatformApprovalChanged is the only writer of the approval triple.
type PlatformApprovalChanged struct {
	PlatformID string    `json:"platform_id"`
	Approved   bool      `json:"approved"`
	ApprovedBy string    `json:"approved_by"`
	ChangedAt  Timestamp `json:"timestamp"`
}

// MembershipChange covers UserJoinedPlatformEvent and UserLeftPlatformEvent.
type MembershipChange struct {
	PlatformID string    `json:"platform_id"`
	ProfileID  string    `json:"profile_id"`
	User       string    `json:"user"`
	ChangedAt  Timestamp `json:"timestamp"`
}

// Follow is emitted when one profile follows another.
type Follow struct {
	Follower  string    `json:"follower"`
	Following string    `json:"following"`
	CreatedAt Timestamp `json:"timestamp"`
}

// Unfollow is emitted when a follow edge is removed.
type Unfollow struct {
	Follower   string    `json:"follower"`
	Unfollowed string    `json:"unfollowed"`
	RemovedAt  Timestamp `json:"timestamp"`
}

// BlockChange covers user-level block and unblock events across the legacy
// encodings (BlockAdded/UserBlock, BlockRemoved/UserUnblock).
type BlockChange struct {
	BlockerProfileID string    `json:"blocker_profile_id"`
	BlockedProfileID string    `json:"blocked_profile_id"`
	ChangedAt        Timestamp `json:"timestamp"`
}
