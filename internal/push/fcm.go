package push

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMGateway delivers through Firebase Cloud Messaging (HTTP v1). The v1 API
// has no batch send, so multicast is one request per token with the per-token
// outcome collected into the Result.
type FCMGateway struct {
	svc       *fcm.Service
	projectID string
}

// NewFCMGateway builds a gateway from a service-account credentials file.
func NewFCMGateway(ctx context.Context, projectID, credentialsFile string) (*FCMGateway, error) {
	if projectID == "" {
		return nil, errors.New("fcm project id is required")
	}
	svc, err := fcm.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "initialise fcm service")
	}
	return &FCMGateway{svc: svc, projectID: projectID}, nil
}

// NewFCMGatewayFromJSON builds a gateway from inline service-account JSON,
// for deployments that inject credentials through the environment.
func NewFCMGatewayFromJSON(ctx context.Context, projectID string, credentialsJSON []byte) (*FCMGateway, error) {
	if projectID == "" {
		return nil, errors.New("fcm project id is required")
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, messagingScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse fcm credentials")
	}
	svc, err := fcm.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, errors.Wrap(err, "initialise fcm service")
	}
	return &FCMGateway{svc: svc, projectID: projectID}, nil
}

func (g *FCMGateway) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (Result, error) {
	parent := fmt.Sprintf("projects/%s", g.projectID)

	var res Result
	for _, token := range tokens {
		req := &fcm.SendMessageRequest{
			Message: &fcm.Message{
				Token: token,
				Notification: &fcm.Notification{
					Title: title,
					Body:  body,
				},
				Data: data,
			},
		}
		_, err := g.svc.Projects.Messages.Send(parent, req).Context(ctx).Do()
		if err != nil {
			res.FailureCount++
			res.Responses = append(res.Responses, TokenResult{Token: token, Error: err.Error()})
			continue
		}
		res.SuccessCount++
		res.Responses = append(res.Responses, TokenResult{Token: token, Success: true})
	}
	return res, nil
}
