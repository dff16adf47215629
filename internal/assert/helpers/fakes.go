package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/wayfare-app/onboard/pkg/api"
)

type (
	// FakeAccountClient is a scriptable account service double. Calls are
	// counted and can be held open on a gate so tests can observe
	// in-flight behavior
	FakeAccountClient struct {
		mu sync.Mutex

		CreateErr    error
		VerifyErr    error
		VerifyResult *api.VerifyResponse
		Gate         chan struct{}

		createCalls []*api.SignupPayload
		verifyCalls []*api.VerifyRequest
	}

	// FakeFeedClient serves a fixed deck of cards
	FakeFeedClient struct {
		Cards []*api.Card
		Err   error
	}

	// FakeNavigator records the navigation actions the engine hands to
	// the app shell
	FakeNavigator struct {
		mu      sync.Mutex
		actions []string
	}
)

// NewFakeAccountClient creates an account double that verifies any code
// against a canned user record
func NewFakeAccountClient() *FakeAccountClient {
	return &FakeAccountClient{
		VerifyResult: &api.VerifyResponse{
			AccessToken: "token-123",
			User: &api.AuthUser{
				ID:    "user-123",
				Email: "traveler@example.com",
			},
		},
	}
}

// NewFakeFeedClient creates a feed double serving count cards
func NewFakeFeedClient(count int) *FakeFeedClient {
	cards := make([]*api.Card, count)
	for i := range cards {
		cards[i] = &api.Card{
			ID:       api.CardID(fmt.Sprintf("card-%d", i)),
			Title:    fmt.Sprintf("Card %d", i),
			Category: "events",
		}
	}
	return &FakeFeedClient{Cards: cards}
}

func (c *FakeAccountClient) CreateUser(
	_ context.Context, payload *api.SignupPayload,
) error {
	c.mu.Lock()
	c.createCalls = append(c.createCalls, payload)
	gate := c.Gate
	err := c.CreateErr
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (c *FakeAccountClient) ValidateCode(
	_ context.Context, req *api.VerifyRequest,
) (*api.VerifyResponse, error) {
	c.mu.Lock()
	c.verifyCalls = append(c.verifyCalls, req)
	gate := c.Gate
	err := c.VerifyErr
	res := c.VerifyResult
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CreateCalls returns the recorded signup payloads
func (c *FakeAccountClient) CreateCalls() []*api.SignupPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*api.SignupPayload{}, c.createCalls...)
}

// VerifyCalls returns the recorded verification requests
func (c *FakeAccountClient) VerifyCalls() []*api.VerifyRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*api.VerifyRequest{}, c.verifyCalls...)
}

func (c *FakeFeedClient) FetchCards(
	_ context.Context, _, size int,
) ([]*api.Card, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if size < len(c.Cards) {
		return c.Cards[:size], nil
	}
	return c.Cards, nil
}

func (n *FakeNavigator) Back(api.SessionID) {
	n.record(api.NavigateBack)
}

func (n *FakeNavigator) OpenSignIn(api.SessionID) {
	n.record(api.NavigateSignIn)
}

func (n *FakeNavigator) CompleteOnboarding(api.SessionID) {
	n.record(api.NavigateMain)
}

// Actions returns the recorded navigation actions in order
func (n *FakeNavigator) Actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.actions...)
}

func (n *FakeNavigator) record(action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
}
