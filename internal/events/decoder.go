package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSkipEvent is the soft-failure sentinel: the payload could not yield the
// required identity fields after every fallback. The event is dropped and
// the stream continues; this never propagates as a hard error.
var ErrSkipEvent = errors.New("payload missing identity fields")

// The chain has shipped several encodings of the same logical events over
// time: flat objects, a "fields" wrapper, "content.fields", "value"/"data"/
// "parsed_json" containers, positional arrays, and Move-style wrapped
// scalars ({"string": ...}, {"vec": [x]}). Decoding therefore runs an
// ordered fallback chain: strict unmarshal of each candidate container,
// then manual field extraction over alias tables. Identity fields never
// take a stringified-object fallback; only exact key/alias matches count.

// unwrapCandidates returns the payload plus every known nested container,
// in priority order.
func unwrapCandidates(raw json.RawMessage) []json.RawMessage {
	out := []json.RawMessage{raw}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj["fields"]; ok {
			out = append(out, v)
		}
		if c, ok := obj["content"]; ok {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(c, &inner); err == nil {
				if v, ok := inner["fields"]; ok {
					out = append(out, v)
				}
			}
		}
		for _, key := range []string{"value", "data", "parsed_json"} {
			if v, ok := obj[key]; ok {
				out = append(out, v)
			}
		}
		return out
	}

	// Positional array encoding: take the first element if it is an object.
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		out = append(out, arr[0])
	}
	return out
}

// decodeStrict unmarshals into v and reports success only when every field
// type matched.
func decodeStrict(raw json.RawMessage, v any) bool {
	return json.Unmarshal(raw, v) == nil
}

// unwrapObjects parses every candidate container into a generic map for
// manual extraction.
func unwrapObjects(raw json.RawMessage) []map[string]any {
	var out []map[string]any
	for _, c := range unwrapCandidates(raw) {
		var obj map[string]any
		if err := json.Unmarshal(c, &obj); err == nil {
			out = append(out, obj)
		}
	}
	return out
}

// extractionTarget picks the candidate container that carries one of the
// identity aliases, falling back to the first parseable object.
func extractionTarget(raw json.RawMessage, identityAliases ...string) map[string]any {
	objs := unwrapObjects(raw)
	for _, o := range objs {
		for _, alias := range identityAliases {
			if _, ok := o[alias]; ok {
				return o
			}
		}
	}
	if len(objs) > 0 {
		return objs[0]
	}
	return map[string]any{}
}

// scalarString unwraps a probed value into a string. Move-style wrappers
// ({"string": x}, {"url": x}, {"vec": [x]}) and one-element arrays unwrap
// one level; non-string scalars stringify only when allowed.
func scalarString(v any, allowStringify bool) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any:
		for _, key := range []string{"string", "url", "vec"} {
			if inner, ok := val[key]; ok {
				return scalarString(inner, allowStringify)
			}
		}
	case []any:
		if len(val) == 1 {
			return scalarString(val[0], allowStringify)
		}
	}
	if allowStringify && v != nil {
		if _, isMap := v.(map[string]any); !isMap {
			if _, isArr := v.([]any); !isArr {
				return fmt.Sprint(v), true
			}
		}
	}
	return "", false
}

func probeString(obj map[string]any, allowStringify bool, aliases ...string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			if s, ok := scalarString(v, allowStringify); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// idField extracts an identity field: exact alias matches and wrapper
// unwrapping only, never stringification.
func idField(obj map[string]any, aliases ...string) string {
	s, _ := probeString(obj, false, aliases...)
	return s
}

func stringField(obj map[string]any, aliases ...string) string {
	s, _ := probeString(obj, true, aliases...)
	return s
}

func optStringField(obj map[string]any, aliases ...string) *string {
	if s, ok := probeString(obj, true, aliases...); ok {
		return &s
	}
	return nil
}

func boolField(obj map[string]any, aliases ...string) bool {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			switch val := v.(type) {
			case bool:
				return val
			case string:
				return val == "true" || val == "1"
			case float64:
				return val != 0
			}
		}
	}
	return false
}

func intField(obj map[string]any, aliases ...string) int {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			switch val := v.(type) {
			case float64:
				return int(val)
			case map[string]any:
				// Nested enum encoding, e.g. {"status": 2}.
				if inner, ok := val[alias]; ok {
					if f, ok := inner.(float64); ok {
						return int(f)
					}
				}
				for _, iv := range val {
					if f, ok := iv.(float64); ok {
						return int(f)
					}
				}
			}
		}
	}
	return 0
}

func timeField(obj map[string]any, aliases ...string) time.Time {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			switch val := v.(type) {
			case float64:
				return fromUnixFlexible(int64(val))
			case string:
				return parseTimeString(val)
			}
		}
	}
	return time.Now().UTC()
}

func rawField(obj map[string]any, aliases ...string) json.RawMessage {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			if b, err := json.Marshal(v); err == nil {
				return b
			}
		}
	}
	return nil
}

// DecodeProfileCreated runs the fallback chain for ProfileCreatedEvent.
func DecodeProfileCreated(raw json.RawMessage) (*ProfileCreated, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev ProfileCreated
		if decodeStrict(c, &ev) && ev.ProfileID != "" && ev.OwnerAddress != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "profile_id", "id")
	ev := ProfileCreated{
		ProfileID:    idField(obj, "profile_id", "id"),
		OwnerAddress: idField(obj, "owner_address", "owner"),
		Username:     stringField(obj, "username"),
		DisplayName:  stringField(obj, "display_name", "name"),
		Bio:          stringField(obj, "bio"),
		ProfilePhoto: stringField(obj, "profile_photo", "profile_picture", "avatar_url"),
		CoverPhoto:   stringField(obj, "cover_photo", "cover_url"),
		Website:      stringField(obj, "website", "url"),
		CreatedAt:    Timestamp{timeField(obj, "timestamp", "created_at")},
	}
	if ev.ProfileID == "" || ev.OwnerAddress == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeProfileUpdated(raw json.RawMessage) (*ProfileUpdated, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev ProfileUpdated
		if decodeStrict(c, &ev) && ev.ProfileID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "profile_id", "id")
	ev := ProfileUpdated{
		ProfileID:          idField(obj, "profile_id", "id"),
		DisplayName:        optStringField(obj, "display_name", "name"),
		Bio:                optStringField(obj, "bio"),
		ProfilePhoto:       optStringField(obj, "profile_photo", "profile_picture", "avatar_url"),
		CoverPhoto:         optStringField(obj, "cover_photo", "cover_url"),
		Website:            optStringField(obj, "website", "url"),
		Birthdate:          optStringField(obj, "birthdate"),
		CurrentLocation:    optStringField(obj, "current_location"),
		RaisedLocation:     optStringField(obj, "raised_location"),
		Phone:              optStringField(obj, "phone"),
		Email:              optStringField(obj, "email"),
		Gender:             optStringField(obj, "gender"),
		PoliticalView:      optStringField(obj, "political_view"),
		Religion:           optStringField(obj, "religion"),
		Education:          optStringField(obj, "education"),
		PrimaryLanguage:    optStringField(obj, "primary_language"),
		RelationshipStatus: optStringField(obj, "relationship_status"),
		XUsername:          optStringField(obj, "x_username"),
		MastodonUsername:   optStringField(obj, "mastodon_username"),
		FacebookUsername:   optStringField(obj, "facebook_username"),
		RedditUsername:     optStringField(obj, "reddit_username"),
		GithubUsername:     optStringField(obj, "github_username"),
		UpdatedAt:          Timestamp{timeField(obj, "timestamp", "updated_at")},
	}
	if ev.ProfileID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeUsernameChanged(raw json.RawMessage) (*UsernameChanged, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev UsernameChanged
		if decodeStrict(c, &ev) && ev.ProfileID != "" && ev.Username != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "profile_id", "id")
	ev := UsernameChanged{
		ProfileID:    idField(obj, "profile_id", "id"),
		OwnerAddress: idField(obj, "owner_address", "owner"),
		Username:     stringField(obj, "username", "name"),
		UpdatedAt:    Timestamp{timeField(obj, "timestamp")},
	}
	if ev.ProfileID == "" || ev.Username == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeBlockListCreated(raw json.RawMessage) (*BlockListCreated, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev BlockListCreated
		if decodeStrict(c, &ev) && ev.BlockListID != "" && ev.OwnerAddress != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "block_list_id", "id")
	ev := BlockListCreated{
		BlockListID:  idField(obj, "block_list_id", "id"),
		OwnerAddress: idField(obj, "owner", "owner_address"),
		CreatedAt:    Timestamp{timeField(obj, "timestamp")},
	}
	if ev.BlockListID == "" || ev.OwnerAddress == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodePlatformCreated(raw json.RawMessage) (*PlatformCreated, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev PlatformCreated
		if decodeStrict(c, &ev) && ev.PlatformID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	status := PlatformStatus{Value: intField(obj, "status")}
	ev := PlatformCreated{
		PlatformID:       idField(obj, "platform_id", "id"),
		Name:             stringField(obj, "name"),
		Tagline:          stringField(obj, "tagline"),
		Description:      optStringField(obj, "description"),
		Logo:             optStringField(obj, "logo", "logo_url"),
		DeveloperAddress: idField(obj, "developer", "developer_address", "creator"),
		TermsOfService:   optStringField(obj, "terms_of_service"),
		PrivacyPolicy:    optStringField(obj, "privacy_policy"),
		PlatformNames:    rawField(obj, "platform_names"),
		Links:            rawField(obj, "links"),
		Status:           status,
		CreatedAt:        Timestamp{timeField(obj, "timestamp", "created_at")},
	}
	if ev.PlatformID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodePlatformUpdated(raw json.RawMessage) (*PlatformUpdated, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev PlatformUpdated
		if decodeStrict(c, &ev) && ev.PlatformID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	ev := PlatformUpdated{
		PlatformID:     idField(obj, "platform_id", "id"),
		Name:           optStringField(obj, "name"),
		Tagline:        optStringField(obj, "tagline"),
		Description:    optStringField(obj, "description"),
		Logo:           optStringField(obj, "logo", "logo_url"),
		TermsOfService: optStringField(obj, "terms_of_service"),
		PrivacyPolicy:  optStringField(obj, "privacy_policy"),
		PlatformNames:  rawField(obj, "platform_names"),
		Links:          rawField(obj, "links"),
		UpdatedAt:      Timestamp{timeField(obj, "timestamp", "updated_at")},
	}
	if _, ok := obj["status"]; ok {
		ev.Status = &PlatformStatus{Value: intField(obj, "status")}
	}
	if ev.PlatformID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeModeratorChange(raw json.RawMessage) (*ModeratorChange, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev ModeratorChange
		if decodeStrict(c, &ev) && ev.PlatformID != "" && ev.ModeratorAddress != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	ev := ModeratorChange{
		PlatformID:       idField(obj, "platform_id", "id"),
		ModeratorAddress: idField(obj, "moderator_address", "moderator", "moderator_id"),
		ActorAddress:     idField(obj, "added_by", "removed_by", "admin", "actor"),
		ChangedAt:        Timestamp{timeField(obj, "timestamp")},
	}
	if ev.PlatformID == "" || ev.ModeratorAddress == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodePlatformBlockChange(raw json.RawMessage) (*PlatformBlockChange, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev PlatformBlockChange
		if decodeStrict(c, &ev) && ev.PlatformID != "" && ev.ProfileID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	ev := PlatformBlockChange{
		PlatformID:   idField(obj, "platform_id", "id"),
		ProfileID:    idField(obj, "profile_id", "blocked_profile_id"),
		ActorAddress: idField(obj, "blocked_by", "unblocked_by", "actor"),
		ChangedAt:    Timestamp{timeField(obj, "timestamp")},
	}
	if ev.PlatformID == "" || ev.ProfileID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeApprovalChanged(raw json.RawMessage) (*PlatformApprovalChanged, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev PlatformApprovalChanged
		if !decodeStrict(c, &ev) || ev.PlatformID == "" {
			continue
		}
		// The approval flag has legacy aliases; only trust the strict path
		// when the canonical key is present, otherwise a legacy payload
		// would silently decode as "not approved".
		var keys map[string]json.RawMessage
		if json.Unmarshal(c, &keys) == nil {
			if _, ok := keys["approved"]; ok {
				return &ev, nil
			}
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	ev := PlatformApprovalChanged{
		PlatformID: idField(obj, "platform_id", "id"),
		Approved:   boolField(obj, "approved", "is_approved"),
		ApprovedBy: idField(obj, "approved_by", "changed_by", "admin"),
		ChangedAt:  Timestamp{timeField(obj, "timestamp")},
	}
	if ev.PlatformID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeMembershipChange(raw json.RawMessage) (*MembershipChange, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev MembershipChange
		if decodeStrict(c, &ev) && ev.PlatformID != "" && ev.ProfileID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "platform_id", "id")
	ev := MembershipChange{
		PlatformID: idField(obj, "platform_id", "id"),
		ProfileID:  idField(obj, "profile_id"),
		User:       idField(obj, "user", "user_address"),
		ChangedAt:  Timestamp{timeField(obj, "timestamp")},
	}
	if ev.PlatformID == "" || ev.ProfileID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeFollow(raw json.RawMessage) (*Follow, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev Follow
		if decodeStrict(c, &ev) && ev.Follower != "" && ev.Following != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "follower", "follower_address")
	ev := Follow{
		Follower:  idField(obj, "follower", "follower_address"),
		Following: idField(obj, "following", "following_address"),
		CreatedAt: Timestamp{timeField(obj, "timestamp")},
	}
	if ev.Follower == "" || ev.Following == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeUnfollow(raw json.RawMessage) (*Unfollow, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev Unfollow
		if decodeStrict(c, &ev) && ev.Follower != "" && ev.Unfollowed != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "follower", "follower_address")
	ev := Unfollow{
		Follower:   idField(obj, "follower", "follower_address"),
		Unfollowed: idField(obj, "unfollowed", "following", "following_address"),
		RemovedAt:  Timestamp{timeField(obj, "timestamp")},
	}
	if ev.Follower == "" || ev.Unfollowed == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}

func DecodeBlockChange(raw json.RawMessage) (*BlockChange, error) {
	for _, c := range unwrapCandidates(raw) {
		var ev BlockChange
		if decodeStrict(c, &ev) && ev.BlockerProfileID != "" && ev.BlockedProfileID != "" {
			return &ev, nil
		}
	}
	obj := extractionTarget(raw, "blocker_profile_id", "blocker")
	ev := BlockChange{
		BlockerProfileID: idField(obj, "blocker_profile_id", "blocker"),
		BlockedProfileID: idField(obj, "blocked_profile_id", "blocked", "unblocked"),
		ChangedAt:        Timestamp{timeField(obj, "timestamp")},
	}
	if ev.BlockerProfileID == "" || ev.BlockedProfileID == "" {
		return nil, ErrSkipEvent
	}
	return &ev, nil
}
