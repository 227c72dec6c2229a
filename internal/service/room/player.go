package room

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/service/subtitle"
)

const defaultSubtitleLabel = "Subtitles"

type SetDurationParams struct {
	Caller
	DurationSeconds float64
}

// SetDuration lets any participant report the media length once its player knows it.
func (s *service) SetDuration(ctx context.Context, params *SetDurationParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		duration := domain.ClampMin(params.DurationSeconds, 0)

		st := t.state()
		if st.DurationSeconds == duration {
			return "", nil
		}

		st.DurationSeconds = duration
		t.commit(domain.ActionDurationSet)
		return "", nil
	})
}

type PlaybackParams struct {
	Caller
	// AtSeconds is the position the host's player was at, nil keeps the current one.
	AtSeconds *float64
}

func (p *PlaybackParams) position(current float64) float64 {
	if p.AtSeconds == nil {
		return current
	}
	return domain.ClampMin(*p.AtSeconds, 0)
}

// applyPlayback changes the timeline directly and cancels any sync session.
func (t *tx) applyPlayback(playing bool, at float64, actionTag string) {
	st := t.state()
	if st.Playing == playing && st.CurrentTimeSeconds == at && !st.SyncActive() {
		return
	}

	st.Playing = playing
	st.CurrentTimeSeconds = at
	st.ResetSync()
	t.commit(actionTag)
}

func (s *service) Play(ctx context.Context, params *PlaybackParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		t.applyPlayback(true, params.position(t.state().CurrentTimeSeconds), domain.ActionPlay)
		return "", nil
	})
}

func (s *service) Pause(ctx context.Context, params *PlaybackParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		t.applyPlayback(false, params.position(t.state().CurrentTimeSeconds), domain.ActionPause)
		return "", nil
	})
}

type SeekParams struct {
	Caller
	AtSeconds float64
}

func (s *service) Seek(ctx context.Context, params *SeekParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		t.applyPlayback(t.state().Playing, domain.ClampMin(params.AtSeconds, 0), domain.ActionSeek)
		return "", nil
	})
}

type SetRateParams struct {
	Caller
	Rate float64
}

func (s *service) SetRate(ctx context.Context, params *SetRateParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		rate := domain.ClampRate(params.Rate)
		st := t.state()
		if st.PlaybackRate == rate && !st.SyncActive() {
			return "", nil
		}

		st.PlaybackRate = rate
		st.ResetSync()
		t.commit(domain.ActionRateSet)
		return "", nil
	})
}

type SetSubtitleParams struct {
	Caller
	Label   string
	VttText string
	// SubtitleUrl is downloaded and converted when VttText is empty.
	SubtitleUrl string
}

// SetSubtitle attaches caption text to the current media. Empty label and text clear it.
func (s *service) SetSubtitle(ctx context.Context, params *SetSubtitleParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		label := strings.TrimSpace(params.Label)
		text := params.VttText
		if err := validation.Validate(label, subtitleLabelRule...); err != nil {
			return "", validationError(err.Error())
		}
		if err := validation.Validate(text, subtitleTextRule...); err != nil {
			return "", validationError(err.Error())
		}

		st := t.state()

		if text == "" && strings.TrimSpace(params.SubtitleUrl) != "" {
			sub, err := t.s.subtitles.Fetch(context.WithoutCancel(t.ctx), params.SubtitleUrl)
			if err != nil {
				var fetchErr *subtitle.FetchError
				if errors.As(err, &fetchErr) {
					return "", externalFetchError(fetchErr.Reason, err)
				}
				return "", externalFetchError("Subtitle download failed.", err)
			}
			text = sub.VttText
			if label == "" {
				label = sub.Label
			}
		}

		if strings.TrimSpace(text) == "" {
			if label != "" {
				return "", validationError("Subtitle text is required.")
			}
			if st.SubtitleLabel == "" && st.SubtitleVttText == "" {
				return "", nil
			}
			st.SubtitleLabel = ""
			st.SubtitleVttText = ""
			t.commit(domain.ActionSubtitleClear)
			return "", nil
		}

		if label == "" {
			label = defaultSubtitleLabel
		}
		text = subtitle.ToVTT(text)
		if st.SubtitleLabel == label && st.SubtitleVttText == text {
			return "", nil
		}

		st.SubtitleLabel = label
		st.SubtitleVttText = text
		t.commit(domain.ActionSubtitleSet)
		return "", nil
	})
}
