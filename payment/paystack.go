package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const paystackBaseURL = "https://api.paystack.co"

var _ Provider = &Paystack{}

type Paystack struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewPaystack(secretKey string, logger *slog.Logger) *Paystack {
	return &Paystack{
		secretKey:  secretKey,
		baseURL:    paystackBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type paystackMetadataField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

type paystackInitRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
	Metadata    struct {
		CustomFields []paystackMetadataField `json:"custom_fields"`
	} `json:"metadata"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *Paystack) InitializeCheckout(ctx context.Context, params CheckoutParams) (CheckoutInfo, error) {
	body := paystackInitRequest{
		Email:       params.Email,
		Amount:      params.Amount.Amount(),
		Currency:    params.Amount.Currency().Code,
		Reference:   params.Reference,
		CallbackURL: params.CallbackURL,
	}
	for name, value := range params.Metadata {
		body.Metadata.CustomFields = append(body.Metadata.CustomFields, paystackMetadataField{
			DisplayName:  name,
			VariableName: name,
			Value:        value,
		})
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return CheckoutInfo{}, fmt.Errorf("failed to encode initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/transaction/initialize", bytes.NewReader(encoded))
	if err != nil {
		return CheckoutInfo{}, fmt.Errorf("failed to build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return CheckoutInfo{}, fmt.Errorf("initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	var initResp paystackInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return CheckoutInfo{}, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !initResp.Status {
		return CheckoutInfo{}, fmt.Errorf("paystack rejected checkout: %s", initResp.Message)
	}

	p.logger.Info("Initialized checkout",
		"reference", initResp.Data.Reference, "email", params.Email)

	return CheckoutInfo{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
	} `json:"data"`
}

func (p *Paystack) VerifyReference(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var verifyResp paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return false, fmt.Errorf("failed to decode verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !verifyResp.Status {
		return false, fmt.Errorf("paystack verify failed: %s", verifyResp.Message)
	}

	return verifyResp.Data.Status == "success", nil
}
