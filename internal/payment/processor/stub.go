package processor

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubClient is a deterministic in-process processor for tests and local runs
// without processor credentials. Every payment it reports is approved and
// payable by the stub buyer.
type StubClient struct {
	seq atomic.Int64
}

// NewStub constructs a StubClient.
func NewStub() *StubClient {
	return &StubClient{}
}

func (c *StubClient) CreatePreference(_ context.Context, req PreferenceRequest) (*Preference, error) {
	id := fmt.Sprintf("stub-pref-%d", c.seq.Add(1))
	return &Preference{
		ID:        id,
		InitPoint: "http://localhost/checkout/" + id,
	}, nil
}

func (c *StubClient) GetPayment(_ context.Context, paymentID string) (*Payment, error) {
	p := &Payment{
		ID:                paymentID,
		Status:            StatusApproved,
		TransactionAmount: 100,
		Payer:             &Payer{Email: "stub-buyer@example.com"},
	}
	p.AdditionalInfo.Items = []Item{{Title: "Stub Course", UnitPrice: 100, Quantity: 1}}
	return p, nil
}
