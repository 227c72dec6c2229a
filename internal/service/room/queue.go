package room

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/service/media"
)

// resolve expands a user link. Provider fetches run to completion even if the caller goes away.
func (t *tx) resolve(rawURL string) (media.Resolution, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validation.Validate(rawURL, mediaUrlRule...); err != nil {
		return media.Resolution{}, validationError(err.Error())
	}

	res, err := t.s.resolver.Resolve(context.WithoutCancel(t.ctx), rawURL)
	if err != nil {
		var playbackErr *media.PlaybackError
		switch {
		case errors.As(err, &playbackErr):
			return media.Resolution{}, externalFetchError(playbackErr.Error(), err)
		case errors.Is(err, media.ErrInvalidURL):
			return media.Resolution{}, validationError(ReasonInvalidMediaURL)
		default:
			return media.Resolution{}, &Error{Kind: KindValidation, Reason: ReasonNoMedia, Err: err}
		}
	}
	if len(res.URLs) == 0 {
		return media.Resolution{}, validationError(ReasonNoMedia)
	}

	return res, nil
}

// fitQueue trims urls to the space left in the queue.
func (t *tx) fitQueue(urls []string) ([]string, error) {
	if t.s.playlistLimit <= 0 || len(urls) == 0 {
		return urls, nil
	}

	free := t.s.playlistLimit - t.state().QueueLength()
	if free <= 0 {
		return nil, stateError(ReasonQueueFull)
	}

	return urls[:min(free, len(urls))], nil
}

// suggestName renames a room still carrying its default name.
func (t *tx) suggestName(name string) {
	name = strings.TrimSpace(name)
	if name == "" || !t.state().HasDefaultName() {
		return
	}
	if err := validation.Validate(name, roomNameRule...); err != nil {
		return
	}

	t.state().RoomName = name
}

type SetMediaParams struct {
	Caller
	MediaUrl string
	Autoplay bool
}

// SetMedia plays the first resolved url now and puts the rest at the head of the queue.
func (s *service) SetMedia(ctx context.Context, params *SetMediaParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		res, err := t.resolve(params.MediaUrl)
		if err != nil {
			return "", err
		}

		// a full queue only drops the extra urls, the media itself still changes
		rest, err := t.fitQueue(res.URLs[1:])
		if err != nil {
			rest = nil
		}

		st := t.state()
		st.SetMedia(res.URLs[0], t.caller.SenderId, params.Autoplay)
		st.InsertNext(rest, t.caller.SenderId)
		t.suggestName(res.SuggestedName)
		t.commit(domain.ActionMediaSet)
		return "", nil
	})
}

type AddQueueParams struct {
	Caller
	MediaUrl string
}

// AddQueueNext inserts every resolved url at the head of the queue, keeping their order.
func (s *service) AddQueueNext(ctx context.Context, params *AddQueueParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		res, err := t.resolve(params.MediaUrl)
		if err != nil {
			return "", err
		}

		urls, err := t.fitQueue(res.URLs)
		if err != nil {
			return "", err
		}

		t.state().InsertNext(urls, t.caller.SenderId)
		t.suggestName(res.SuggestedName)
		t.commit(domain.ActionQueueAddNext)
		return "", nil
	})
}

// AddQueueLast appends resolved urls. Viewers may use it when the room allows viewer queueing.
func (s *service) AddQueueLast(ctx context.Context, params *AddQueueParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		st := t.state()
		isHost := st.IsHost(t.caller.SenderId)

		switch {
		case st.HostUserId == "":
			return "", authorizationError(ReasonNoHost)
		case !isHost && !st.AllowViewerQueueAdd:
			return "", authorizationError(ReasonViewerQueueAdd)
		}

		res, err := t.resolve(params.MediaUrl)
		if err != nil {
			return "", err
		}

		urls, err := t.fitQueue(res.URLs)
		if err != nil {
			return "", err
		}

		st.Append(urls, t.caller.SenderId)
		if isHost {
			t.suggestName(res.SuggestedName)
		}
		t.commit(domain.ActionQueueAddLast)
		return "", nil
	})
}

type StepQueueParams struct {
	Caller
	Autoplay bool
}

func (s *service) AdvanceQueue(ctx context.Context, params *StepQueueParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		if err := st.Advance(params.Autoplay); errors.Is(err, domain.ErrQueueEmpty) {
			if st.Playing {
				st.Playing = false
				t.commit(domain.ActionQueueEmpty)
			}
			return ReasonQueueEmpty, nil
		}

		t.commit(domain.ActionQueueAdvance)
		return "", nil
	})
}

func (s *service) PreviousQueue(ctx context.Context, params *StepQueueParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		if len(st.PlaylistHistoryUrls) == 0 {
			return "", stateError(ReasonHistoryEmpty)
		}
		// current media goes back to the queue head, which needs a free slot
		if st.MediaUrl != "" && t.s.playlistLimit > 0 && st.QueueLength() >= t.s.playlistLimit {
			return "", stateError(ReasonQueueFull)
		}

		if err := st.Previous(params.Autoplay); err != nil {
			return "", stateError(ReasonHistoryEmpty)
		}

		t.commit(domain.ActionQueuePrevious)
		return "", nil
	})
}

type RemoveQueueItemParams struct {
	Caller
	Index int
}

// RemoveQueueItem drops one queued item. The host or the user who queued it may do it.
func (s *service) RemoveQueueItem(ctx context.Context, params *RemoveQueueItemParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := validation.Validate(params.Index, queueIndexRule...); err != nil {
			return "", validationError(err.Error())
		}

		st := t.state()
		addedBy, err := st.QueueItemAddedBy(params.Index)
		if err != nil {
			return "", validationError(ReasonInvalidIndex)
		}
		if !st.IsHost(t.caller.SenderId) && addedBy != t.caller.SenderId {
			return "", authorizationError(ReasonNotItemOwner)
		}

		if err := st.RemoveQueueItem(params.Index); err != nil {
			return "", validationError(ReasonInvalidIndex)
		}

		t.commit(domain.ActionQueueRemove)
		return "", nil
	})
}

type MoveQueueItemParams struct {
	Caller
	FromIndex int
	ToIndex   int
}

func (s *service) MoveQueueItem(ctx context.Context, params *MoveQueueItemParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		n := st.QueueLength()
		if params.FromIndex < 0 || params.FromIndex >= n || params.ToIndex < 0 || params.ToIndex >= n {
			return "", validationError(ReasonInvalidMove)
		}
		if params.FromIndex == params.ToIndex {
			return "", nil
		}

		if err := st.MoveQueueItem(params.FromIndex, params.ToIndex); err != nil {
			return "", validationError(ReasonInvalidMove)
		}

		t.commit(domain.ActionQueueMove)
		return "", nil
	})
}
