package controller

import "context"

type contextKey int

const (
	userIdCtxKey contextKey = iota
	communityIdCtxKey
	sessionCtxKey
)

func (c controller) getUserIdFromCtx(ctx context.Context) string {
	userId, ok := ctx.Value(userIdCtxKey).(string)
	if !ok {
		return ""
	}

	return userId
}

func (c controller) getCommunityIdFromCtx(ctx context.Context) string {
	communityId, ok := ctx.Value(communityIdCtxKey).(string)
	if !ok {
		return ""
	}

	return communityId
}

func (c controller) getSessionFromCtx(ctx context.Context) *session {
	s, ok := ctx.Value(sessionCtxKey).(*session)
	if !ok {
		return nil
	}

	return s
}
