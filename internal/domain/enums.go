package domain

// ProviderCode identifies a supported print-on-demand provider.
type ProviderCode string

const (
	ProviderPrintify ProviderCode = "printify"
	ProviderGelato   ProviderCode = "gelato"
	ProviderPrintful ProviderCode = "printful"
)

// AllProviders lists every supported provider code.
func AllProviders() []ProviderCode {
	return []ProviderCode{ProviderPrintify, ProviderGelato, ProviderPrintful}
}

// IsValid checks if the provider code is supported
func (p ProviderCode) IsValid() bool {
	switch p {
	case ProviderPrintify, ProviderGelato, ProviderPrintful:
		return true
	default:
		return false
	}
}

// DispatchState represents the lifecycle state of a dispatched order
type DispatchState string

const (
	StateDraft     DispatchState = "draft"
	StatePending   DispatchState = "pending"
	StateSent      DispatchState = "sent"
	StateFailed    DispatchState = "failed"
	StateCompleted DispatchState = "completed"
)

// IsValid checks if the dispatch state is valid
func (s DispatchState) IsValid() bool {
	switch s {
	case StateDraft, StatePending, StateSent, StateFailed, StateCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid. Pending is
// transient: it is claimed immediately before a create-order call and
// resolves to sent or failed. Failed orders return to draft only through
// an explicit retry.
func (s DispatchState) CanTransitionTo(next DispatchState) bool {
	switch s {
	case StateDraft:
		return next == StatePending
	case StatePending:
		return next == StateSent || next == StateFailed
	case StateSent:
		return next == StateCompleted || next == StateSent
	case StateFailed:
		return next == StateDraft
	case StateCompleted:
		return false // Terminal state
	default:
		return false
	}
}

// FulfillmentStatus is the normalized provider-side order status.
type FulfillmentStatus string

const (
	FulfillmentUnknown      FulfillmentStatus = "unknown"
	FulfillmentInProduction FulfillmentStatus = "in_production"
	FulfillmentShipped      FulfillmentStatus = "shipped"
	FulfillmentDelivered    FulfillmentStatus = "delivered"
)

// IsTerminal reports whether the status completes the dispatch lifecycle.
func (f FulfillmentStatus) IsTerminal() bool {
	return f == FulfillmentShipped || f == FulfillmentDelivered
}
