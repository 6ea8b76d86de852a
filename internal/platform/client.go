// Package platform provides the client seam between the outreach
// engine and the social networks it acts on. Clients implement the
// send operations; everything above this package stays network-free.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

var (
	// ErrProfileNotFound indicates the handle does not exist on the platform.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNotSupported indicates the platform has no such operation.
	ErrNotSupported = errors.New("operation not supported")

	// ErrMissingCredentials indicates the client has no usable token.
	ErrMissingCredentials = errors.New("missing credentials")
)

// Client is the capability surface one social network exposes. Send
// operations act on behalf of the operator's own account.
type Client interface {
	// Platform identifies the network this client talks to.
	Platform() models.Platform

	// LookupProfile fetches the current public profile for a handle,
	// including recent posts where the platform exposes them.
	LookupProfile(ctx context.Context, handle string) (*models.Prospect, error)

	// SearchProspects finds prospects matching a free-text query.
	SearchProspects(ctx context.Context, query string, limit int) ([]*models.Prospect, error)

	// Follow follows the prospect's account.
	Follow(ctx context.Context, prospect *models.Prospect) error

	// Like likes the given post.
	Like(ctx context.Context, postID string) error

	// Reply posts a public reply to the given post.
	Reply(ctx context.Context, postID, text string) error

	// SendDirectMessage sends a private message to the prospect.
	SendDirectMessage(ctx context.Context, prospect *models.Prospect, text string) error

	// SendConnectionRequest sends a connection request with an optional
	// note, on platforms that have the concept.
	SendConnectionRequest(ctx context.Context, prospect *models.Prospect, note string) error
}

// Execute runs one planned outbox step against the client. Research
// steps return the refreshed profile so the caller can persist it;
// send steps return nil.
//
// A follow step that carries a message maps to a connection request on
// platforms that support notes, since that is the closest analogue.
func Execute(ctx context.Context, client Client, item *models.OutboxItem, prospect *models.Prospect) (*models.Prospect, error) {
	if client == nil {
		return nil, errors.New("client is nil")
	}
	if item == nil {
		return nil, errors.New("outbox item is nil")
	}

	switch item.Action {
	case models.ActionResearch:
		refreshed, err := client.LookupProfile(ctx, item.Handle)
		if err != nil {
			return nil, err
		}
		return refreshed, nil

	case models.ActionFollow:
		if item.Message != "" && client.Platform() == models.PlatformLinkedIn {
			return nil, client.SendConnectionRequest(ctx, prospect, item.Message)
		}
		return nil, client.Follow(ctx, prospect)

	case models.ActionLike:
		if item.PostID == "" {
			return nil, fmt.Errorf("like step for %s has no post id", item.Handle)
		}
		return nil, client.Like(ctx, item.PostID)

	case models.ActionReply:
		if item.PostID == "" {
			return nil, fmt.Errorf("reply step for %s has no post id", item.Handle)
		}
		return nil, client.Reply(ctx, item.PostID, item.Message)

	case models.ActionDirectMessage:
		return nil, client.SendDirectMessage(ctx, prospect, item.Message)
	}

	return nil, fmt.Errorf("unknown action %q", item.Action)
}
