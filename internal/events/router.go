package events

import (
	"strings"
)

// Router classifies fully-qualified event type names into kinds. Matching is
// by suffix, not exact equality, because the package address prefix varies
// across deployments. Some legacy suffixes alias onto the same kind.
type Router struct {
	packageAddress string
	rules          []rule
}

type rule struct {
	suffixes []string
	kind     Kind
}

// routingTable is ordered; first match wins. Every suffix carries the "::"
// separator so e.g. UnfollowEvent never matches the FollowEvent rule.
var routingTable = []rule{
	{[]string{"::ProfileCreatedEvent"}, KindProfileCreated},
	{[]string{"::ProfileUpdatedEvent"}, KindProfileUpdated},
	{[]string{"::UsernameRegisteredEvent"}, KindUsernameRegistered},
	{[]string{"::UsernameUpdatedEvent"}, KindUsernameUpdated},
	{[]string{"::BlockListCreatedEvent"}, KindBlockListCreated},

	{[]string{"::PlatformCreatedEvent"}, KindPlatformCreated},
	{[]string{"::PlatformUpdatedEvent"}, KindPlatformUpdated},
	{[]string{"::ModeratorAddedEvent"}, KindModeratorAdded},
	{[]string{"::ModeratorRemovedEvent"}, KindModeratorRemoved},
	{[]string{"::PlatformBlockedProfileEvent"}, KindProfileBlockedByPlatform},
	{[]string{"::PlatformUnblockedProfileEvent"}, KindProfileUnblockedByPlatform},
	{[]string{"::PlatformApprovalChangedEvent"}, KindPlatformApprovalChanged},
	{[]string{"::UserJoinedPlatformEvent", "::PlatformJoinedEvent"}, KindUserJoinedPlatform},
	{[]string{"::UserLeftPlatformEvent", "::PlatformLeftEvent"}, KindUserLeftPlatform},

	{[]string{"::FollowEvent"}, KindFollow},
	{[]string{"::UnfollowEvent"}, KindUnfollow},

	{[]string{"::BlockAddedEvent", "::UserBlockEvent", "::BlockProfileEvent"}, KindBlockAdded},
	{[]string{"::BlockRemovedEvent", "::UserUnblockEvent", "::UnblockProfileEvent"}, KindBlockRemoved},
}

// NewRouter builds a router scoped to the given package address. An empty
// address accepts events from any package.
func NewRouter(packageAddress string) *Router {
	return &Router{
		packageAddress: packageAddress,
		rules:          routingTable,
	}
}

// Classify maps a fully-qualified type name to a kind. The second return is
// false for unrecognized types; callers drop those silently.
func (r *Router) Classify(typeName string) (Kind, bool) {
	if r.packageAddress != "" && !strings.HasPrefix(typeName, r.packageAddress) {
		return KindUnknown, false
	}
	for _, rl := range r.rules {
		for _, suffix := range rl.suffixes {
			if strings.Contains(typeName, suffix) {
				return rl.kind, true
			}
		}
	}
	return KindUnknown, false
}
