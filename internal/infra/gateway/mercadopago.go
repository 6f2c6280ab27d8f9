// Package gateway はMercado Pago APIのHTTPクライアント。
// リクエスト/レスポンスは名前付きフィールドの型で境界を固定する。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// 決済ゲートウェイの約束。usecaseはこのinterfaceにだけ依存する。
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	GetPayment(ctx context.Context, paymentID int64) (Payment, error)
	SearchPaymentsByReference(ctx context.Context, externalReference string) ([]Payment, error)
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int64   `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	NotificationURL   string           `json:"notification_url"`
	ExternalReference string           `json:"external_reference"`
}

// 作成されたpreference。InitPointがホスト型チェックアウトのURL。
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

const PaymentStatusApproved = "approved"

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// DI
// timeoutはゲートウェイ呼び出し全体の上限。
func NewClient(baseURL string, accessToken string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

// CreatePreference は決済intentを作成する。201以外はエラー。
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Preference{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return Preference{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Preference{}, fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Preference{}, fmt.Errorf("create preference: unexpected status %d", resp.StatusCode)
	}

	var pref Preference
	if err := decodeBody(resp.Body, &pref); err != nil {
		return Preference{}, fmt.Errorf("create preference: %w", err)
	}
	if pref.InitPoint == "" {
		return Preference{}, fmt.Errorf("create preference: response has no init_point")
	}
	return pref, nil
}

// GetPayment は支払いIDで支払い詳細を取得する。
func (c *Client) GetPayment(ctx context.Context, paymentID int64) (Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/payments/%d", c.baseURL, paymentID), nil)
	if err != nil {
		return Payment{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payment{}, fmt.Errorf("get payment: unexpected status %d", resp.StatusCode)
	}

	var p Payment
	if err := decodeBody(resp.Body, &p); err != nil {
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

type paymentSearchResponse struct {
	Results []Payment `json:"results"`
}

// SearchPaymentsByReference はexternal_referenceで支払いを検索する（対帳スイープ用）。
func (c *Client) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]Payment, error) {
	q := url.Values{}
	q.Set("external_reference", externalReference)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payments/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search payments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search payments: unexpected status %d", resp.StatusCode)
	}

	var out paymentSearchResponse
	if err := decodeBody(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("search payments: %w", err)
	}
	return out.Results, nil
}

func decodeBody(r io.Reader, v any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	return nil
}
