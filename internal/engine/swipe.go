package engine

import (
	"context"
	"fmt"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/events"
)

// Swipe directions accepted by RecordSwipe. Right and up both count as a
// like; left is a dislike
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
	SwipeUp    = "up"
)

// LoadDeck pulls one page of recommendations from the content feed and
// installs the card IDs in the session so full-deck completion is
// detectable. The returned cards carry titles and categories for the
// renderer
func (e *Engine) LoadDeck(
	ctx context.Context, id api.SessionID,
) ([]*api.Card, error) {
	st, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Status != api.SessionActive {
		return nil, ErrSessionEnded
	}

	cards, err := e.feed.FetchCards(ctx, 1, e.config.DeckPageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]api.CardID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	err = e.raiseSessionEvent(ctx, id, api.EventTypeDeckLoaded,
		api.DeckLoadedEvent{SessionID: id, Cards: ids})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// RecordSwipe collects one card outcome. A liked card is appended to the
// like list and removed from dislikes if present; a disliked card is the
// mirror. The lists are deduplicated, ordered, and never cleared
// mid-flow; completing the full deck schedules the auto-advance off the
// swipe step
func (e *Engine) RecordSwipe(
	ctx context.Context, id api.SessionID, card api.CardID, direction string,
) error {
	var liked bool
	switch direction {
	case SwipeRight, SwipeUp:
		liked = true
	case SwipeLeft:
		liked = false
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDirection, direction)
	}

	_, err := e.execSession(ctx, id,
		func(st *api.SessionState, ag *Aggregator) error {
			if err := requireActive(st); err != nil {
				return err
			}
			return events.Raise(ag, api.EventTypeSwipeRecorded,
				api.SwipeRecordedEvent{
					SessionID: id,
					Card:      card,
					Liked:     liked,
				})
		},
	)
	return err
}
