package services

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

const pushTitle = "Playdate Buddy"

// apnsClient is the part of *apns2.Client the pusher uses
type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNsPusher delivers events as Apple push notifications
type APNsPusher struct {
	client apnsClient
	topic  string
}

// APNsOptions configures token-based APNs authentication
type APNsOptions struct {
	KeyPath    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// NewAPNsPusher creates a pusher authenticated with a .p8 signing key
func NewAPNsPusher(opts APNsOptions) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(opts.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   opts.KeyID,
		TeamID:  opts.TeamID,
	})
	if opts.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: opts.Topic}, nil
}

// Push sends event to the device
func (p *APNsPusher) Push(ctx context.Context, deviceToken string, event Event) error {
	body := payload.NewPayload().
		AlertTitle(pushTitle).
		AlertBody(event.Message()).
		Sound("default").
		Custom("type", event.Type).
		Custom("from", event.From)
	if event.PlaceID != "" {
		body = body.Custom("place_id", event.PlaceID).Custom("when", event.When)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     body,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
