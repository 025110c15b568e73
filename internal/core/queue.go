package core

// Queue is a FIFO of recommended tracks.
type Queue struct {
	Tracks []SimilarTrack `json:"tracks"`
}

// Head returns the next track without removing it, or nil if the queue is empty.
func (q *Queue) Head() *SimilarTrack {
	if q == nil || len(q.Tracks) == 0 {
		return nil
	}
	return &q.Tracks[0]
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (SimilarTrack, bool) {
	if q == nil || len(q.Tracks) == 0 {
		return SimilarTrack{}, false
	}
	head := q.Tracks[0]
	q.Tracks = q.Tracks[1:]
	return head, true
}

// Items returns a copy of the queued tracks.
func (q *Queue) Items() []SimilarTrack {
	if q == nil || len(q.Tracks) == 0 {
		return nil
	}
	out := make([]SimilarTrack, len(q.Tracks))
	copy(out, q.Tracks)
	return out
}

// Len returns the total number of tracks in the queue.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}
