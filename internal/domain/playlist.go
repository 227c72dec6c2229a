package domain

import (
	"errors"
	"slices"
)

var (
	ErrQueueIndexOutOfRange = errors.New("queue index out of range")
	ErrQueueEmpty           = errors.New("queue is empty")
	ErrHistoryEmpty         = errors.New("history is empty")
)

func (r *RoomState) QueueLength() int {
	return len(r.PlaylistUrls)
}

func (r *RoomState) QueueItemAddedBy(index int) (string, error) {
	if index < 0 || index >= len(r.PlaylistUrls) {
		return "", ErrQueueIndexOutOfRange
	}

	return r.PlaylistAddedByUserIds[index], nil
}

// InsertNext puts urls at the queue head keeping their relative order.
func (r *RoomState) InsertNext(urls []string, addedBy string) {
	r.PlaylistUrls = slices.Insert(r.PlaylistUrls, 0, urls...)
	r.PlaylistAddedByUserIds = slices.Insert(r.PlaylistAddedByUserIds, 0, repeat(addedBy, len(urls))...)
}

func (r *RoomState) Append(urls []string, addedBy string) {
	r.PlaylistUrls = append(r.PlaylistUrls, urls...)
	r.PlaylistAddedByUserIds = append(r.PlaylistAddedByUserIds, repeat(addedBy, len(urls))...)
}

func (r *RoomState) RemoveQueueItem(index int) error {
	if index < 0 || index >= len(r.PlaylistUrls) {
		return ErrQueueIndexOutOfRange
	}

	r.PlaylistUrls = slices.Delete(r.PlaylistUrls, index, index+1)
	r.PlaylistAddedByUserIds = slices.Delete(r.PlaylistAddedByUserIds, index, index+1)
	return nil
}

func (r *RoomState) MoveQueueItem(from, to int) error {
	n := len(r.PlaylistUrls)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrQueueIndexOutOfRange
	}
	if from == to {
		return nil
	}

	url, addedBy := r.PlaylistUrls[from], r.PlaylistAddedByUserIds[from]
	r.PlaylistUrls = slices.Insert(slices.Delete(r.PlaylistUrls, from, from+1), to, url)
	r.PlaylistAddedByUserIds = slices.Insert(slices.Delete(r.PlaylistAddedByUserIds, from, from+1), to, addedBy)
	return nil
}

// Advance pushes the current media onto history and makes the queue head current.
func (r *RoomState) Advance(autoplay bool) error {
	if len(r.PlaylistUrls) == 0 {
		return ErrQueueEmpty
	}

	if r.MediaUrl != "" {
		addedBy := r.CurrentMediaAddedByUserId
		if addedBy == "" {
			addedBy = r.HostUserId
		}
		r.PlaylistHistoryUrls = append(r.PlaylistHistoryUrls, r.MediaUrl)
		r.PlaylistHistoryAddedByUserIds = append(r.PlaylistHistoryAddedByUserIds, addedBy)
	}

	url, addedBy := r.PlaylistUrls[0], r.PlaylistAddedByUserIds[0]
	r.PlaylistUrls = slices.Delete(r.PlaylistUrls, 0, 1)
	r.PlaylistAddedByUserIds = slices.Delete(r.PlaylistAddedByUserIds, 0, 1)

	r.SetMedia(url, addedBy, autoplay)
	return nil
}

// Previous is the mirror of Advance: current media goes back to the queue head
// and the latest history entry becomes current.
func (r *RoomState) Previous(autoplay bool) error {
	last := len(r.PlaylistHistoryUrls) - 1
	if last < 0 {
		return ErrHistoryEmpty
	}

	if r.MediaUrl != "" {
		addedBy := r.CurrentMediaAddedByUserId
		if addedBy == "" {
			addedBy = r.HostUserId
		}
		r.InsertNext([]string{r.MediaUrl}, addedBy)
	}

	url, addedBy := r.PlaylistHistoryUrls[last], r.PlaylistHistoryAddedByUserIds[last]
	r.PlaylistHistoryUrls = r.PlaylistHistoryUrls[:last]
	r.PlaylistHistoryAddedByUserIds = r.PlaylistHistoryAddedByUserIds[:last]

	r.SetMedia(url, addedBy, autoplay)
	return nil
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
