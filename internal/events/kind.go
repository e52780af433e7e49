package events

// Kind is the logical classification of a chain event after routing.
type Kind int

const (
	KindUnknown Kind = iota

	// Profile domain
	KindProfileCreated
	KindProfileUpdated
	KindUsernameRegistered
	KindUsernameUpdated
	KindBlockListCreated

	// Platform domain
	KindPlatformCreated
	KindPlatformUpdated
	KindModeratorAdded
	KindModeratorRemoved
	KindProfileBlockedByPlatform
	KindProfileUnblockedByPlatform
	KindPlatformApprovalChanged
	KindUserJoinedPlatform
	KindUserLeftPlatform

	// Social-graph domain
	KindFollow
	KindUnfollow

	// Blocking domain (user-level)
	KindBlockAdded
	KindBlockRemoved
)

var kindNames = map[Kind]string{
	KindUnknown:                    "Unknown",
	KindProfileCreated:             "ProfileCreatedEvent",
	KindProfileUpdated:             "ProfileUpdatedEvent",
	KindUsernameRegistered:         "UsernameRegisteredEvent",
	KindUsernameUpdated:            "UsernameUpdatedEvent",
	KindBlockListCreated:           "BlockListCreatedEvent",
	KindPlatformCreated:            "PlatformCreatedEvent",
	KindPlatformUpdated:            "PlatformUpdatedEvent",
	KindModeratorAdded:             "ModeratorAddedEvent",
	KindModeratorRemoved:           "ModeratorRemovedEvent",
	KindProfileBlockedByPlatform:   "PlatformBlockedProfileEvent",
	KindProfileUnblockedByPlatform: "PlatformUnblockedProfileEvent",
	KindPlatformApprovalChanged:    "PlatformApprovalChangedEvent",
	KindUserJoinedPlatform:         "UserJoinedPlatformEvent",
	KindUserLeftPlatform:           "UserLeftPlatformEvent",
	KindFollow:                     "FollowEvent",
	KindUnfollow:                   "UnfollowEvent",
	KindBlockAdded:                 "BlockAddedEvent",
	KindBlockRemoved:               "BlockRemovedEvent",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Domain groups kinds by the consumer that processes them.
type Domain int

const (
	DomainNone Domain = iota
	DomainProfile
	DomainPlatform
	DomainSocialGraph
	DomainBlocking
)

func (d Domain) String() string {
	switch d {
	case DomainProfile:
		return "profile"
	case DomainPlatform:
		return "platform"
	case DomainSocialGraph:
		return "social_graph"
	case DomainBlocking:
		return "blocking"
	default:
		return "none"
	}
}

// Domain returns the consumer domain that owns this kind.
func (k Kind) Domain() Domain {
	switch k {
	case KindProfileCreated, KindProfileUpdated, KindUsernameRegistered,
		KindUsernameUpdated, KindBlockListCreated:
		return DomainProfile
	case KindPlatformCreated, KindPlatformUpdated, KindModeratorAdded,
		KindModeratorRemoved, KindProfileBlockedByPlatform,
		KindProfileUnblockedByPlatform, KindPlatformApprovalChanged,
		KindUserJoinedPlatform, KindUserLeftPlatform:
		return DomainPlatform
	case KindFollow, KindUnfollow:
		return DomainSocialGraph
	case KindBlockAdded, KindBlockRemoved:
		return DomainBlocking
	default:
		return DomainNone
	}
}
