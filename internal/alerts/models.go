package alerts

// Channel is a notification delivery channel
type Channel string

const (
	ChannelInApp   Channel = "in_app"
	ChannelDesktop Channel = "desktop_push"
	ChannelEmail   Channel = "email"
)

// PriceCondition triggers when the price crosses target in the operator's direction
type PriceCondition struct {
	Operator string  `json:"operator" validate:"required,oneof=>= <="`
	Target   float64 `json:"target"`
}

// Rule holds the conditions of an alert
type Rule struct {
	Price *PriceCondition `json:"price,omitempty" validate:"omitempty"`
}

// Alert is a stored price alert
type Alert struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	Channels []Channel `json:"channels"`
	Rule     Rule      `json:"rule"`
	Active   bool      `json:"active"`
}

// CreateRequest is the payload for a new alert
type CreateRequest struct {
	Symbol   string    `json:"symbol" validate:"required,max=16"`
	Channels []Channel `json:"channels" validate:"omitempty,dive,oneof=in_app desktop_push email"`
	Rule     Rule      `json:"rule"`
}

// UpdateRequest changes the rule and/or active flag. Nil fields are left alone.
type UpdateRequest struct {
	Rule   *Rule `json:"rule,omitempty" validate:"omitempty"`
	Active *bool `json:"active,omitempty"`
}
