package jupiter

import (
	"encoding/json"
	"time"
)

type OrderParams struct {
	MakingAmount string `json:"makingAmount"`
	TakingAmount string `json:"takingAmount"`
	SlippageBps  string `json:"slippageBps,omitempty"`
	ExpiredAt    string `json:"expiredAt,omitempty"`
	FeeBps       string `json:"feeBps,omitempty"`
}

type CreateOrderRequest struct {
	InputMint        string      `json:"inputMint"`
	OutputMint       string      `json:"outputMint"`
	Maker            string      `json:"maker"`
	Payer            string      `json:"payer"`
	Params           OrderParams `json:"params"`
	ComputeUnitPrice string      `json:"computeUnitPrice,omitempty"`
	FeeAccount       string      `json:"feeAccount,omitempty"`
	WrapAndUnwrapSol *bool       `json:"wrapAndUnwrapSol,omitempty"`
}

type CancelOrderRequest struct {
	Maker            string `json:"maker"`
	Order            string `json:"order"`
	ComputeUnitPrice string `json:"computeUnitPrice,omitempty"`
}

type ExecuteRequest struct {
	SignedTransaction string `json:"signedTransaction"`
	RequestID         string `json:"requestId"`
}

type GetOrdersQuery struct {
	User        string
	OrderStatus string
	InputMint   string
	OutputMint  string
	Page        int
}

// Response is an upstream reply passed through to callers unchanged.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Order is the subset of a trigger order the service reads.
type Order struct {
	Order        string    `json:"order"`
	Status       string    `json:"status"`
	InputMint    string    `json:"inputMint"`
	OutputMint   string    `json:"outputMint"`
	MakingAmount string    `json:"makingAmount"`
	TakingAmount string    `json:"takingAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}
